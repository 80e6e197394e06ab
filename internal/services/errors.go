// Package services defines the business logic of the listing data core: the
// comment log, the rating cache derived from it, and the favorites set.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidListing is returned when an operation receives an empty
	// listing identifier.
	ErrInvalidListing = errors.New("listing id is empty")

	// ErrInvalidRating is returned when a comment rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrTextTooLong is returned when a comment body exceeds the configured
	// rune limit.
	ErrTextTooLong = errors.New("comment text too long")

	// ErrStorage wraps a key-value failure on a write path (or the read half
	// of a read-modify-write) that could not be degraded to a default.
	ErrStorage = errors.New("storage unavailable")
)
