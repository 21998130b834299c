// Package api exposes games and the leaderboard over JSON HTTP. It decodes
// and validates requests, calls the game service and maps its errors to
// status codes. It carries no presentation logic beyond hiding the colors
// of face-down cards.
package api
