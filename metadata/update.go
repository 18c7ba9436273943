package metadata

import (
	"time"

	"github.com/poiesic/docvault/core"
)

// RecordUpdate is a partial update applied to an existing FileRecord.
// Nil fields are left unchanged.
type RecordUpdate struct {
	Status         *core.Status
	Error          *string
	Size           *int64
	Path           *string
	StoredName     *string
	ChunkCount     *int
	ImageCount     *int
	ProcessedAt    *time.Time
	EmbeddingModel *string
}

func (u RecordUpdate) apply(rec *core.FileRecord) {
	if u.Status != nil {
		rec.Status = *u.Status
	}
	if u.Error != nil {
		rec.Error = *u.Error
	}
	if u.Size != nil {
		rec.Size = *u.Size
	}
	if u.Path != nil {
		rec.Path = *u.Path
	}
	if u.StoredName != nil {
		rec.StoredName = *u.StoredName
	}
	if u.ChunkCount != nil {
		rec.ChunkCount = *u.ChunkCount
	}
	if u.ImageCount != nil {
		rec.ImageCount = *u.ImageCount
	}
	if u.ProcessedAt != nil {
		t := *u.ProcessedAt
		rec.ProcessedAt = &t
	}
	if u.EmbeddingModel != nil {
		rec.EmbeddingModel = *u.EmbeddingModel
	}
}

// Ptr returns a pointer to v, for building RecordUpdate literals.
func Ptr[T any](v T) *T {
	return &v
}
