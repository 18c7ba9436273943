package metadata

import "errors"

var (
	// ErrBaseDirRequired is returned when a store is created without a base
	// directory.
	ErrBaseDirRequired = errors.New("base directory required")

	// ErrStoreIO indicates a metadata read or write failed after retries.
	// The previous backing content is left intact.
	ErrStoreIO = errors.New("metadata store I/O failure")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
