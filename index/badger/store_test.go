package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/index"
)

func newTestIndex(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testChunks(fileID string) []core.Chunk {
	return []core.Chunk{
		{ID: "c1", Text: "alpha", Page: 1, SourceFileID: fileID, Vector: []float32{1, 0, 0}},
		{ID: "c2", Text: "beta", Page: 1, SourceFileID: fileID, Vector: []float32{0, 1, 0}},
		{ID: "c3", Text: "gamma", Page: 2, SourceFileID: fileID, Vector: []float32{0.9, 0.1, 0}},
	}
}

func TestUpsertAndQuery(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	stored, err := s.Upsert(ctx, "alice", "f1", testChunks("f1"))
	require.NoError(t, err)
	assert.Equal(t, 3, stored)

	matches, err := s.Query(ctx, "alice", "f1", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "alpha", matches[0].Text)
	assert.Equal(t, "gamma", matches[1].Text)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
	assert.InDelta(t, 0, matches[0].Distance, 1e-5)
}

func TestUpsertReplacesPriorEntries(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "alice", "f1", testChunks("f1"))
	require.NoError(t, err)

	// A rerun produces fresh chunk ids; old entries must not survive.
	_, err = s.Upsert(ctx, "alice", "f1", []core.Chunk{
		{ID: "c9", Text: "delta", Page: 1, SourceFileID: "f1", Vector: []float32{0, 0, 1}},
	})
	require.NoError(t, err)

	matches, err := s.Query(ctx, "alice", "f1", []float32{0, 0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "delta", matches[0].Text)
}

func TestDeleteScopedToFile(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "alice", "f1", testChunks("f1"))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "alice", "f2", testChunks("f2"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "alice", "f1"))

	matches, err := s.Query(ctx, "alice", "f1", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = s.Query(ctx, "alice", "f2", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestQueryIsolatedAcrossUsers(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "alice", "f1", testChunks("f1"))
	require.NoError(t, err)

	matches, err := s.Query(ctx, "bob", "f1", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestQueryValidation(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	_, err := s.Query(ctx, "alice", "f1", nil, 5)
	assert.ErrorIs(t, err, index.ErrEmptyVector)

	_, err = s.Query(ctx, "alice", "f1", []float32{1}, 0)
	assert.ErrorIs(t, err, index.ErrInvalidTopK)
}

func TestQuerySkipsChunksWithoutVectors(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "alice", "f1", []core.Chunk{
		{ID: "c1", Text: "has vector", Page: 1, Vector: []float32{1, 0}},
		{ID: "c2", Text: "no vector", Page: 1, Vector: []float32{}},
	})
	require.NoError(t, err)

	matches, err := s.Query(ctx, "alice", "f1", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "has vector", matches[0].Text)
}

func TestDeleteUnknownPairIsNoOp(t *testing.T) {
	s := newTestIndex(t)
	assert.NoError(t, s.Delete(context.Background(), "ghost", "none"))
}
