package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/poiesic/docvault/core"
)

const metadataFileName = "metadata.json"

// Store is a durable, per-user, crash-safe mapping from file id to FileRecord.
//
// Each user's records live in one JSON document under the user's directory.
// Mutations for one user are linearized by a lazily created per-user mutex;
// operations for different users never block each other. JSON encoding and
// decoding happen outside the lock so slow serialization does not hold up
// other writers. Writes go to a temporary file that replaces the target with
// a rename, so a failed write never corrupts prior content.
//
// The store is safe for concurrent use within one process. It is not safe
// against external writers editing the backing files directly.
type Store struct {
	baseDir string
	logger  *slog.Logger

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a metadata store rooted at baseDir, creating the directory
// if needed.
func NewStore(baseDir string, opts ...StoreOption) (*Store, error) {
	if baseDir == "" {
		return nil, ErrBaseDirRequired
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating metadata base directory: %w", err)
	}

	s := &Store{
		baseDir: baseDir,
		logger:  slog.Default().With("component", "metadata-store"),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// userLock returns the mutex for a user, creating it on first use.
// The lock map grows with the number of distinct users seen in the process
// lifetime; acceptable for the small user sets this deployment targets.
func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// UserDir returns (and creates) the storage directory for a user.
func (s *Store) UserDir(userID string) (string, error) {
	dir := filepath.Join(s.baseDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating user directory: %w", err)
	}
	return dir, nil
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.baseDir, userID, metadataFileName)
}

// Load returns the full record mapping for a user. A missing backing file
// yields an empty map (first access), and so does unparseable content:
// corrupt metadata is logged and discarded, never propagated as a failure.
func (s *Store) Load(ctx context.Context, userID string) (map[string]*core.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	content, err := s.readLocked(userID)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	// Decode outside the lock.
	return s.decode(userID, content), nil
}

// readLocked reads the raw backing file. Caller holds the user lock.
func (s *Store) readLocked(userID string) ([]byte, error) {
	content, err := os.ReadFile(s.path(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading metadata for user %s: %w", ErrStoreIO, userID, err)
	}
	return content, nil
}

// decode parses the raw document, treating corrupt content as empty.
func (s *Store) decode(userID string, content []byte) map[string]*core.FileRecord {
	if len(content) == 0 {
		return map[string]*core.FileRecord{}
	}
	var records map[string]*core.FileRecord
	if err := json.Unmarshal(content, &records); err != nil {
		s.logger.Error("discarding corrupt metadata", "user", userID, "err", err)
		return map[string]*core.FileRecord{}
	}
	if records == nil {
		records = map[string]*core.FileRecord{}
	}
	return records
}

// Save replaces the full record mapping for a user. The write is retried up
// to 3 times with linearly increasing backoff; exhausting the retries
// surfaces a hard failure and leaves the previous content intact.
func (s *Store) Save(ctx context.Context, userID string, records map[string]*core.FileRecord) error {
	// Encode outside the lock.
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata for user %s: %w", userID, err)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.writeLocked(ctx, userID, content)
}

// writeLocked writes the document atomically with retries. Caller holds the
// user lock.
func (s *Store) writeLocked(ctx context.Context, userID string, content []byte) error {
	dir, err := s.UserDir(userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}

	err = retryLinear(ctx, func() error {
		return writeFileAtomic(dir, s.path(userID), content)
	}, saveMaxAttempts, saveBackoffStep)
	if err != nil {
		s.logger.Error("metadata save failed after retries", "user", userID, "err", err)
		return fmt.Errorf("%w: saving metadata for user %s: %w", ErrStoreIO, userID, err)
	}

	s.logger.Debug("metadata saved", "user", userID, "bytes", len(content))
	return nil
}

// writeFileAtomic writes content to a temp file in dir and renames it over
// target, so readers only ever observe complete documents.
func writeFileAtomic(dir, target string, content []byte) error {
	tmp, err := os.CreateTemp(dir, metadataFileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// CreateRecord persists a new record, or fully replaces an existing one with
// the same id. The record must carry every required field; validation failure
// leaves the store untouched.
func (s *Store) CreateRecord(ctx context.Context, userID string, record *core.FileRecord) error {
	if err := core.ValidateNewFileRecord(record); err != nil {
		return err
	}

	rec := record.Clone()
	rec.LastUpdated = time.Now().UTC()

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	content, err := s.readLocked(userID)
	if err != nil {
		return err
	}
	records := s.decode(userID, content)
	records[rec.ID] = rec

	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata for user %s: %w", userID, err)
	}
	return s.writeLocked(ctx, userID, encoded)
}

// UpdateRecord merges a partial update into an existing record and persists
// the result, setting LastUpdated. The read-modify-write window holds the
// user's lock, making it atomic with respect to every other mutation for the
// same user. Updating an unknown file id fails with core.ErrNotFound; records
// are only ever created through CreateRecord, which enforces the required
// field set.
func (s *Store) UpdateRecord(ctx context.Context, userID, fileID string, update RecordUpdate) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	content, err := s.readLocked(userID)
	if err != nil {
		return err
	}
	records := s.decode(userID, content)

	rec, ok := records[fileID]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, fileID)
	}

	update.apply(rec)
	rec.LastUpdated = time.Now().UTC()

	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata for user %s: %w", userID, err)
	}
	return s.writeLocked(ctx, userID, encoded)
}

// DeleteRecord removes a record if present. Deleting an absent record is a
// no-op, not an error; existence checks belong to the caller.
func (s *Store) DeleteRecord(ctx context.Context, userID, fileID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	content, err := s.readLocked(userID)
	if err != nil {
		return err
	}
	records := s.decode(userID, content)

	if _, ok := records[fileID]; !ok {
		return nil
	}
	delete(records, fileID)

	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata for user %s: %w", userID, err)
	}
	return s.writeLocked(ctx, userID, encoded)
}

// Record returns one record by id, or core.ErrNotFound.
func (s *Store) Record(ctx context.Context, userID, fileID string) (*core.FileRecord, error) {
	records, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, ok := records[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, fileID)
	}
	return rec, nil
}
