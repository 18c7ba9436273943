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


package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreRequired is returned when a metadata store is not provided.
	ErrStoreRequired = errors.New("metadata store required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrSplitterRequired is returned when a nil splitter is configured.
	ErrSplitterRequired = errors.New("splitter required")

	// ErrDraining is returned when a job is submitted after Drain has begun.
	ErrDraining = errors.New("pipeline is draining")

	// ErrNoTextExtracted is returned when extraction yields no usable text.
	ErrNoTextExtracted = errors.New("no text extracted")
)

// Kind identifies the pipeline stage that produced a failure. It is
// recorded verbatim in the file record's error field so callers can
// tell a bad upload from an embedding outage.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindExtraction Kind = "ExtractionError"
	KindEmbedding  Kind = "EmbeddingError"
	KindIndex      Kind = "IndexError"
	KindStoreIO    Kind = "StoreIOError"
)

// StageError wraps a stage failure with its Kind.
type StageError struct {
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(kind Kind, err error) *StageError {
	return &StageError{Kind: kind, Err: err}
}
