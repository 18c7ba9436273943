package core

import (
	"time"
)

// Status describes where an uploaded file is in its processing lifecycle.
//
// Valid transitions: uploading -> processing -> ready, or processing -> error.
// A record never leaves ready or error; deletion removes the record entirely.
type Status string

const (
	// StatusUploading marks a chunked upload session that is still receiving bytes.
	StatusUploading Status = "uploading"
	// StatusProcessing marks a file whose ingestion job is queued or running.
	StatusProcessing Status = "processing"
	// StatusReady marks a file whose chunks are embedded and indexed.
	StatusReady Status = "ready"
	// StatusError marks a file whose ingestion failed; Error holds the reason.
	StatusError Status = "error"
)

// FileRecord is the persisted metadata for one uploaded file.
// Records are stored per user as a JSON mapping from file id to record.
type FileRecord struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`        // original filename, user supplied, untrusted
	StoredName string `json:"stored_name"` // sanitized on-disk name: {id}__{sanitized(name)}
	Path       string `json:"path"`
	Size       int64  `json:"size"` // authoritative value taken from disk after write
	MimeType   string `json:"mime_type"`
	Status     Status `json:"status"`

	UploadedAt  time.Time  `json:"uploaded_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	LastUpdated time.Time  `json:"last_updated"`

	Error          string `json:"error,omitempty"`
	ChunkCount     int    `json:"chunk_count"`
	ImageCount     int    `json:"image_count"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		out.ProcessedAt = &t
	}
	return &out
}

// Chunk is a bounded-length text segment derived from a document.
// Chunks are ephemeral: they exist in memory during one ingestion job and are
// persisted only in the vector index, never in the metadata store.
type Chunk struct {
	ID           string
	Text         string
	Page         int // source page number, 0 when unknown
	SourceFileID string
	Vector       []float32 // embedding, nil until the embed stage runs
}

// DeleteResult reports the outcome of a best-effort multi-resource delete.
// Deletion touches the disk file, the vector index, and the metadata record
// independently; every step is attempted and its failure recorded here.
type DeleteResult struct {
	Disk     error
	Index    error
	Metadata error
}

// Failed reports whether any delete step failed.
func (d DeleteResult) Failed() bool {
	return d.Disk != nil || d.Index != nil || d.Metadata != nil
}
