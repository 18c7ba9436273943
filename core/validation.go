// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
)

// ValidateNewFileRecord validates a record before its first persistence.
//
// A record becomes visible to readers of the metadata store only once every
// required field is present; partial records must never be written. Required
// on creation: ID, Name, StoredName, Path, MimeType, Status, UploadedAt.
// Size may legitimately be zero (an empty upload session).
//
// NOT validated (populated later by the ingestion pipeline):
//   - ProcessedAt, ChunkCount, ImageCount, EmbeddingModel
//   - Error (only meaningful once Status is error)
func ValidateNewFileRecord(record *FileRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	required := []struct {
		name  string
		empty bool
	}{
		{"id", record.ID == ""},
		{"name", record.Name == ""},
		{"stored_name", record.StoredName == ""},
		{"path", record.Path == ""},
		{"mime_type", record.MimeType == ""},
		{"status", record.Status == ""},
		{"uploaded_at", record.UploadedAt.IsZero()},
	}
	for _, f := range required {
		if f.empty {
			return fmt.Errorf("%w: %w: %s", ErrInvalidRecord, ErrMissingField, f.name)
		}
	}

	if record.Size < 0 {
		return fmt.Errorf("%w: size cannot be negative", ErrInvalidRecord)
	}

	return ValidateStatus(record.Status)
}

// ValidateStatus validates that a Status has a recognized value.
func ValidateStatus(status Status) error {
	switch status {
	case StatusUploading, StatusProcessing, StatusReady, StatusError:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}
