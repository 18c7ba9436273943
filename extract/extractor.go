package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Extractor obtains raw text from a stored file. Implementations must raise
// an error for unreadable input; an empty result is the caller's problem to
// judge. Implementations must be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, error)
}

// File extracts text from plain files on disk. Content that is not valid
// UTF-8 is decoded best-effort, replacing invalid byte sequences, mirroring
// how structured extraction degrades for unknown formats.
type File struct {
	logger *slog.Logger
}

var _ Extractor = (*File)(nil)

// NewFile creates a file-based text extractor.
func NewFile() *File {
	return &File{
		logger: slog.Default().With("component", "file-extractor"),
	}
}

// Extract reads the file and returns its textual content.
func (f *File) Extract(ctx context.Context, path, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	f.logger.Debug("lossy decode of non-UTF-8 content", "path", path, "mime", mimeType)
	return strings.ToValidUTF8(string(data), "�"), nil
}
