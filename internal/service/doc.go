// Package service contains the application-level use cases. It keeps the
// live games of the process, one per session, and connects finished games
// to the leaderboard.
//
// Services receive their dependencies through constructor injection and
// translate lower-level errors into the sentinels defined in errors.go,
// which the API layer maps to HTTP status codes.
package service
