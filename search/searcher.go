package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/index"
)

// DefaultTopK is the number of results returned when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Result is one ranked hit against a file's chunks. Distance is cosine
// distance, so smaller is closer.
type Result struct {
	ChunkID  string  `json:"chunk_id"`
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	Distance float32 `json:"distance"`
}

// Searcher answers natural-language queries against one file's indexed
// chunks.
type Searcher struct {
	embedder ai.Embedder
	index    index.Index
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder ai.Embedder, idx index.Index, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		embedder: embedder,
		index:    idx,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query and returns up to topK chunks of the given file
// ranked by ascending cosine distance. A blank query returns no results
// without calling the embedder.
func (s *Searcher) Search(ctx context.Context, userID, fileID, query string, topK int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Query(ctx, userID, fileID, vector, topK)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query answered", "user", userID, "file_id", fileID, "hits", len(matches))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			ChunkID:  m.ChunkID,
			Text:     m.Text,
			Page:     m.Page,
			Distance: m.Distance,
		}
	}
	return results, nil
}
