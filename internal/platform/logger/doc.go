// Package logger sets up the process-wide JSON slog logger and carries
// request-scoped loggers, tagged with trace and request IDs, through
// context.Context. Test helpers capture log output for assertions.
package logger
