// Package files is the file management facade: single-shot uploads,
// listings, status views, original-file retrieval and best-effort
// deletes spanning disk, vector index and metadata.
package files
