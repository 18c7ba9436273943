package chunk

import "errors"

var (
	// ErrInvalidChunkSize is returned for a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidOverlap is returned for a negative overlap.
	ErrInvalidOverlap = errors.New("chunk overlap cannot be negative")

	// ErrOverlapTooLarge is returned when the overlap is not smaller than the
	// chunk size.
	ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than chunk size")
)
