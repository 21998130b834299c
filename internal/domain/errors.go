// Package domain defines the core game entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPairCount is returned when a deck is requested with fewer than
	// one pair, or with more pairs than the palette has colors.
	ErrInvalidPairCount = errors.New("invalid pair count")

	// ErrInvalidPalette is returned when a palette contains duplicates or
	// reuses the odd color as a paired color.
	ErrInvalidPalette = errors.New("invalid color palette")

	// ErrEmptyName is returned when a score entry has no display name.
	ErrEmptyName = errors.New("name cannot be empty")
)
