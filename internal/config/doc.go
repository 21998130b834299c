// Package config loads server, storage, game-rule and leaderboard settings
// from defaults, an optional config.yaml and COLORMATCH_* environment
// variables, and validates them before anything else starts.
package config
