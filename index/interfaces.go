package index

import (
	"context"

	"github.com/poiesic/docvault/core"
)

// Match is one ranked result from a similarity query.
type Match struct {
	ChunkID  string
	Text     string
	Page     int
	Distance float32 // cosine distance, lower is closer
}

// Index stores chunk embeddings scoped per user and file and answers
// similarity queries over them. Implementations must be thread-safe.
type Index interface {
	// Upsert stores the chunks of one file, replacing whatever the index
	// previously held for that (user, file) pair. Returns the number of
	// chunks stored.
	Upsert(ctx context.Context, userID, fileID string, chunks []core.Chunk) (int, error)

	// Delete removes every chunk stored for the (user, file) pair.
	// Deleting an unknown pair is a no-op.
	Delete(ctx context.Context, userID, fileID string) error

	// Query returns up to topK chunks of the (user, file) pair ranked by
	// cosine distance to the query vector, closest first.
	Query(ctx context.Context, userID, fileID string, vector []float32, topK int) ([]Match, error)

	// Close releases the backing storage.
	Close() error
}
