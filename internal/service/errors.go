package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps these to HTTP status codes.
var (
	// ErrSessionNotFound indicates that no live game exists for the session ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrSessionNotFound = errors.New("game session not found")

	// ErrGameNotComplete indicates a score was submitted for a game still in progress.
	// API layer should map this to HTTP 409 Conflict.
	ErrGameNotComplete = errors.New("game is not complete")

	// ErrScoreAlreadySaved indicates the current round's score was already saved.
	// API layer should map this to HTTP 409 Conflict.
	ErrScoreAlreadySaved = errors.New("score already saved for this game")
)

// GameServiceError wraps errors from the game service with context.
type GameServiceError struct {
	// Operation is the operation that failed (e.g., "start_game", "save_score")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GameServiceError.
func (e *GameServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("game service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("game service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GameServiceError) Unwrap() error {
	return e.Err
}

// NewGameServiceError creates a new GameServiceError.
// It returns known sentinel errors directly without wrapping.
func NewGameServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{ErrSessionNotFound, ErrGameNotComplete, ErrScoreAlreadySaved} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	return &GameServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
