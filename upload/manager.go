package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/metadata"
)

// Submitter hands completed uploads to the ingestion pipeline.
type Submitter interface {
	Submit(job ingestion.Job) error
}

// Manager runs chunked upload sessions. A session assembles bytes into a
// partial file under the user's directory; Complete promotes the partial
// file to its permanent name and queues it for processing. Session state
// lives in the metadata store as an ordinary record with status
// "uploading", so an interrupted upload is visible (and deletable) like
// any other file.
type Manager struct {
	store  *metadata.Store
	jobs   Submitter
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates an upload session manager.
func NewManager(store *metadata.Store, jobs Submitter, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if jobs == nil {
		return nil, ErrSubmitterRequired
	}

	m := &Manager{
		store:  store,
		jobs:   jobs,
		logger: slog.Default().With("component", "upload"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start opens a new session and returns its id. The session id doubles as
// the file id once the upload completes.
func (m *Manager) Start(ctx context.Context, userID, filename string, totalSize int64, mimeType string) (string, error) {
	if filename == "" {
		return "", ErrFilenameRequired
	}
	if totalSize < 0 {
		totalSize = 0
	}

	dir, err := m.store.UserDir(userID)
	if err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	partPath := filepath.Join(dir, sessionID+".part")

	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating partial file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("creating partial file: %w", err)
	}

	record := &core.FileRecord{
		ID:         sessionID,
		UserID:     userID,
		Name:       filename,
		StoredName: sessionID + ".part",
		Path:       partPath,
		Size:       totalSize,
		MimeType:   mimeType,
		Status:     core.StatusUploading,
		UploadedAt: time.Now().UTC(),
	}
	if err := m.store.CreateRecord(ctx, userID, record); err != nil {
		os.Remove(partPath)
		return "", err
	}

	m.logger.Info("upload session started", "user", userID, "session", sessionID, "name", filename)
	return sessionID, nil
}

// Append writes the next slice of bytes to the session's partial file and
// refreshes the recorded size. Sessions that are no longer uploading
// reject further appends.
func (m *Manager) Append(ctx context.Context, userID, sessionID string, data []byte) error {
	record, err := m.sessionRecord(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(record.Path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening partial file: %w", err)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("appending to partial file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("appending to partial file: %w", closeErr)
	}

	info, err := os.Stat(record.Path)
	if err != nil {
		return fmt.Errorf("sizing partial file: %w", err)
	}

	return m.store.UpdateRecord(ctx, userID, sessionID, metadata.RecordUpdate{
		Size: metadata.Ptr(info.Size()),
	})
}

// Complete promotes the assembled partial file to its permanent stored
// name, replaces the session record with a processing record under the
// same id, and queues the ingestion job.
func (m *Manager) Complete(ctx context.Context, userID, sessionID string) (*core.FileRecord, error) {
	session, err := m.sessionRecord(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	storedName := core.StoredName(sessionID, session.Name)
	finalPath := filepath.Join(filepath.Dir(session.Path), storedName)
	if err := os.Rename(session.Path, finalPath); err != nil {
		return nil, fmt.Errorf("promoting partial file: %w", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("sizing uploaded file: %w", err)
	}

	if err := m.store.DeleteRecord(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	record := &core.FileRecord{
		ID:         sessionID,
		UserID:     userID,
		Name:       session.Name,
		StoredName: storedName,
		Path:       finalPath,
		Size:       info.Size(),
		MimeType:   session.MimeType,
		Status:     core.StatusProcessing,
		UploadedAt: session.UploadedAt,
	}
	if err := m.store.CreateRecord(ctx, userID, record); err != nil {
		return nil, err
	}

	err = m.jobs.Submit(ingestion.Job{
		UserID:   userID,
		FileID:   sessionID,
		Path:     finalPath,
		Name:     session.Name,
		MimeType: session.MimeType,
	})
	if err != nil {
		m.failRecord(ctx, userID, sessionID, err)
		return nil, err
	}

	m.logger.Info("upload session completed", "user", userID, "file_id", sessionID, "size", info.Size())
	return record.Clone(), nil
}

// sessionRecord loads a session's record and checks it is still accepting
// bytes.
func (m *Manager) sessionRecord(ctx context.Context, userID, sessionID string) (*core.FileRecord, error) {
	record, err := m.store.Record(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if record.Status != core.StatusUploading {
		return nil, fmt.Errorf("%w: status is %q", ErrSessionNotUploading, record.Status)
	}
	return record, nil
}

func (m *Manager) failRecord(ctx context.Context, userID, fileID string, cause error) {
	err := m.store.UpdateRecord(ctx, userID, fileID, metadata.RecordUpdate{
		Status: metadata.Ptr(core.StatusError),
		Error:  metadata.Ptr(cause.Error()),
	})
	if err != nil {
		m.logger.Error("error recording failed submission", "user", userID, "file_id", fileID, "err", err)
	}
}
