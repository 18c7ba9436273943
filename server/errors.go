package server

import "errors"

var (
	// ErrFilesRequired is returned when a file service is not provided.
	ErrFilesRequired = errors.New("file service required")

	// ErrUploadsRequired is returned when an upload manager is not provided.
	ErrUploadsRequired = errors.New("upload manager required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")
)
