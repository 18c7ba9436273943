package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/index"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/metadata"
)

// DefaultMaxUploadSize caps single-shot uploads at 50 MiB.
const DefaultMaxUploadSize = 50 << 20

// Submitter hands saved files to the ingestion pipeline.
type Submitter interface {
	Submit(job ingestion.Job) error
}

// Service is the file management facade: single-shot uploads, listings,
// status views and deletes. Chunked uploads go through the upload package
// instead but land in the same store.
type Service struct {
	store   *metadata.Store
	jobs    Submitter
	index   index.Index
	maxSize int64
	logger  *slog.Logger
}

// Summary is one row in a user's file listing.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	SizeBytes  int64     `json:"size_bytes"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at"`
	Error      string    `json:"error,omitempty"`
}

// StatusView is the processing state of one file.
type StatusView struct {
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ChunkCount  int        `json:"chunk_count"`
	ImageCount  int        `json:"image_count"`
}

// Option configures a Service.
type Option func(*Service)

// WithMaxUploadSize overrides the single-shot upload size cap.
func WithMaxUploadSize(limit int64) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxSize = limit
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the file management facade.
func NewService(store *metadata.Store, jobs Submitter, idx index.Index, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if jobs == nil {
		return nil, ErrSubmitterRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Service{
		store:   store,
		jobs:    jobs,
		index:   idx,
		maxSize: DefaultMaxUploadSize,
		logger:  slog.Default().With("component", "files"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save stores a single-shot upload on disk, records it and queues it for
// processing. Uploads larger than the configured cap are rejected and
// leave no trace on disk or in the store.
func (s *Service) Save(ctx context.Context, userID, filename, mimeType string, r io.Reader) (*core.FileRecord, error) {
	if filename == "" {
		return nil, ErrFilenameRequired
	}

	dir, err := s.store.UserDir(userID)
	if err != nil {
		return nil, err
	}

	fileID := uuid.NewString()
	storedName := core.StoredName(fileID, filename)
	path := filepath.Join(dir, storedName)

	size, err := s.writeCapped(path, r)
	if err != nil {
		return nil, err
	}

	record := &core.FileRecord{
		ID:         fileID,
		UserID:     userID,
		Name:       filename,
		StoredName: storedName,
		Path:       path,
		Size:       size,
		MimeType:   mimeType,
		Status:     core.StatusProcessing,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRecord(ctx, userID, record); err != nil {
		os.Remove(path)
		return nil, err
	}

	err = s.jobs.Submit(ingestion.Job{
		UserID:   userID,
		FileID:   fileID,
		Path:     path,
		Name:     filename,
		MimeType: mimeType,
	})
	if err != nil {
		s.failRecord(ctx, userID, fileID, err)
		return nil, err
	}

	s.logger.Info("file saved", "user", userID, "file_id", fileID, "name", filename, "size", size)
	return record.Clone(), nil
}

// writeCapped copies the upload to disk, failing once it exceeds the size
// cap. The partial file is removed on any failure.
func (s *Service) writeCapped(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		os.Remove(path)
		return 0, fmt.Errorf("writing file: %w", err)
	case closeErr != nil:
		os.Remove(path)
		return 0, fmt.Errorf("writing file: %w", closeErr)
	case written > s.maxSize:
		os.Remove(path)
		return 0, fmt.Errorf("%w: limit is %s", ErrFileTooLarge, humanize.IBytes(uint64(s.maxSize)))
	}

	return written, nil
}

// List returns the user's files newest first. Error details are surfaced
// only for files whose processing failed.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	records, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(records))
	for _, rec := range records {
		summary := Summary{
			ID:         rec.ID,
			Name:       rec.Name,
			Size:       humanize.IBytes(uint64(max(rec.Size, 0))),
			SizeBytes:  rec.Size,
			Status:     string(rec.Status),
			UploadedAt: rec.UploadedAt,
		}
		if rec.Status == core.StatusError {
			summary.Error = rec.Error
		}
		summaries = append(summaries, summary)
	}

	slices.SortFunc(summaries, func(a, b Summary) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return summaries, nil
}

// Status returns the processing state of one file, or core.ErrNotFound.
func (s *Service) Status(ctx context.Context, userID, fileID string) (*StatusView, error) {
	rec, err := s.store.Record(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		Status:     string(rec.Status),
		Error:      rec.Error,
		UploadedAt: rec.UploadedAt,
		ChunkCount: rec.ChunkCount,
		ImageCount: rec.ImageCount,
	}
	if rec.ProcessedAt != nil {
		t := *rec.ProcessedAt
		view.ProcessedAt = &t
	}
	return view, nil
}

// Get returns the full record for one file, or core.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, fileID string) (*core.FileRecord, error) {
	rec, err := s.store.Record(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Delete removes a file's disk content, extracted images, index entries
// and metadata record. Every step is attempted regardless of earlier
// failures; the result records what actually went wrong. An unknown id
// returns core.ErrNotFound without touching anything.
func (s *Service) Delete(ctx context.Context, userID, fileID string) (core.DeleteResult, error) {
	rec, err := s.store.Record(ctx, userID, fileID)
	if err != nil {
		return core.DeleteResult{}, err
	}

	var result core.DeleteResult

	if rmErr := os.Remove(rec.Path); rmErr != nil && !os.IsNotExist(rmErr) {
		result.Disk = rmErr
	}
	imagesDir := filepath.Join(filepath.Dir(rec.Path), fileID+"_images")
	if rmErr := os.RemoveAll(imagesDir); rmErr != nil && result.Disk == nil {
		result.Disk = rmErr
	}

	result.Index = s.index.Delete(ctx, userID, fileID)
	result.Metadata = s.store.DeleteRecord(ctx, userID, fileID)

	if result.Failed() {
		s.logger.Warn("delete completed with failures", "user", userID, "file_id", fileID,
			"disk_err", result.Disk, "index_err", result.Index, "metadata_err", result.Metadata)
	} else {
		s.logger.Info("file deleted", "user", userID, "file_id", fileID)
	}
	return result, nil
}

func (s *Service) failRecord(ctx context.Context, userID, fileID string, cause error) {
	err := s.store.UpdateRecord(ctx, userID, fileID, metadata.RecordUpdate{
		Status: metadata.Ptr(core.StatusError),
		Error:  metadata.Ptr(cause.Error()),
	})
	if err != nil {
		s.logger.Error("error recording failed submission", "user", userID, "file_id", fileID, "err", err)
	}
}
