package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/index"
)

// Store is an embedded vector index backed by BadgerDB. Chunks are keyed by
// (user, file, chunk id) so one file's entries can be replaced or dropped
// without touching any other file or user.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ index.Index = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a vector index at the specified path, creating the directory if
// it doesn't exist. An empty path with inMemory=true opens an ephemeral index.
func Open(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0o755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "vector-index"),
	}, nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert replaces the stored chunks of one file with the given set.
// Replacement rather than merge: chunk ids are fresh on every ingestion run,
// so merging would leak entries from prior runs.
func (s *Store) Upsert(ctx context.Context, userID, fileID string, chunks []core.Chunk) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	err := s.db.Update(func(tx *badger.Txn) error {
		if err := deleteFilePrefix(tx, userID, fileID); err != nil {
			return err
		}
		for i := range chunks {
			c := &chunks[i]
			val, err := marshalStoredChunk(&storedChunk{
				ID:     c.ID,
				Text:   c.Text,
				Page:   c.Page,
				Vector: c.Vector,
			})
			if err != nil {
				return err
			}
			if err := tx.Set(chunkKey(userID, fileID, c.ID), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("chunks indexed", "user", userID, "file", fileID, "count", len(chunks))
	return len(chunks), nil
}

// Delete removes every chunk stored for the (user, file) pair.
func (s *Store) Delete(ctx context.Context, userID, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *badger.Txn) error {
		return deleteFilePrefix(tx, userID, fileID)
	})
}

func deleteFilePrefix(tx *badger.Txn, userID, fileID string) error {
	prefix := filePrefix(userID, fileID)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Query scans the (user, file) prefix and ranks stored chunks by cosine
// distance to the query vector, closest first.
func (s *Store) Query(ctx context.Context, userID, fileID string, vector []float32, topK int) ([]index.Match, error) {
	if len(vector) == 0 {
		return nil, index.ErrEmptyVector
	}
	if topK <= 0 {
		return nil, index.ErrInvalidTopK
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matches []index.Match
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = filePrefix(userID, fileID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var stored *storedChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				stored, err = unmarshalStoredChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(stored.Vector) == 0 {
				continue
			}
			matches = append(matches, index.Match{
				ChunkID:  stored.ID,
				Text:     stored.Text,
				Page:     stored.Page,
				Distance: cosineDistance(vector, stored.Vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b index.Match) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// cosineDistance computes 1 - cosine similarity. Mismatched lengths compare
// only the shared prefix; zero-norm vectors are maximally distant.
func cosineDistance(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
