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


package docvault

import (
	"context"
	"log/slog"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/ai/openai"
	"github.com/poiesic/docvault/chunk"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/files"
	badgeridx "github.com/poiesic/docvault/index/badger"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/metadata"
	"github.com/poiesic/docvault/search"
	"github.com/poiesic/docvault/upload"
)

// Vault wires the full document stack: per-user metadata store, vector
// index, embedder, ingestion pipeline, file service, upload sessions and
// search.
type Vault struct {
	store    *metadata.Store
	index    *badgeridx.Store
	embedder ai.Embedder
	pipeline *ingestion.Pipeline
	files    *files.Service
	uploads  *upload.Manager
	searcher *search.Searcher
	logger   *slog.Logger
}

// VaultOption configures a Vault.
type VaultOption func(*vaultOptions)

type vaultOptions struct {
	aiConfig      *ai.Config
	embedder      ai.Embedder
	chunkConfig   chunk.Config
	poolSize      int
	maxUploadSize int64
	inMemoryIndex bool
	logger        *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) VaultOption {
	return func(o *vaultOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithEmbedder injects a prebuilt embedder, bypassing the OpenAI client.
// Used by tests and embedded deployments.
func WithEmbedder(embedder ai.Embedder) VaultOption {
	return func(o *vaultOptions) {
		o.embedder = embedder
	}
}

// WithChunkConfig overrides the default splitter configuration.
func WithChunkConfig(cfg chunk.Config) VaultOption {
	return func(o *vaultOptions) {
		o.chunkConfig = cfg
	}
}

// WithPoolSize sets the ingestion worker pool size.
func WithPoolSize(size int) VaultOption {
	return func(o *vaultOptions) {
		o.poolSize = size
	}
}

// WithMaxUploadSize overrides the single-shot upload cap.
func WithMaxUploadSize(limit int64) VaultOption {
	return func(o *vaultOptions) {
		o.maxUploadSize = limit
	}
}

// WithInMemoryIndex keeps the vector index off disk. Used by tests.
func WithInMemoryIndex() VaultOption {
	return func(o *vaultOptions) {
		o.inMemoryIndex = true
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) VaultOption {
	return func(o *vaultOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New opens a vault with uploads and metadata under uploadsDir and the
// vector index at indexPath.
func New(uploadsDir, indexPath string, opts ...VaultOption) (*Vault, error) {
	options := &vaultOptions{
		aiConfig:    ai.DefaultConfig(),
		chunkConfig: chunk.DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	store, err := metadata.NewStore(uploadsDir, metadata.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	idx, err := badgeridx.Open(indexPath, options.inMemoryIndex)
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			idx.Close()
			return nil, err
		}
	}

	splitter, err := chunk.NewSplitter(options.chunkConfig)
	if err != nil {
		idx.Close()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithSplitter(splitter),
		ingestion.WithEmbeddingModel(options.aiConfig.EmbeddingModel),
		ingestion.WithLogger(options.logger),
	}
	if options.poolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(options.poolSize))
	}
	pipeline, err := ingestion.NewPipeline(store, extract.NewFile(), embedder, idx, pipelineOpts...)
	if err != nil {
		idx.Close()
		return nil, err
	}

	fileOpts := []files.Option{files.WithLogger(options.logger)}
	if options.maxUploadSize > 0 {
		fileOpts = append(fileOpts, files.WithMaxUploadSize(options.maxUploadSize))
	}
	fileSvc, err := files.NewService(store, pipeline, idx, fileOpts...)
	if err != nil {
		pipeline.Drain(context.Background())
		idx.Close()
		return nil, err
	}

	uploads, err := upload.NewManager(store, pipeline, upload.WithLogger(options.logger))
	if err != nil {
		pipeline.Drain(context.Background())
		idx.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(embedder, idx, search.WithLogger(options.logger))
	if err != nil {
		pipeline.Drain(context.Background())
		idx.Close()
		return nil, err
	}

	return &Vault{
		store:    store,
		index:    idx,
		embedder: embedder,
		pipeline: pipeline,
		files:    fileSvc,
		uploads:  uploads,
		searcher: searcher,
		logger:   options.logger,
	}, nil
}

// Close drains in-flight ingestion jobs and releases the index.
func (v *Vault) Close(ctx context.Context) error {
	if err := v.pipeline.Drain(ctx); err != nil {
		v.logger.Error("error draining pipeline", "err", err)
	}
	if err := v.index.Close(); err != nil {
		v.logger.Error("error closing index", "err", err)
		return err
	}
	return nil
}

// Files returns the file management facade.
func (v *Vault) Files() *files.Service {
	return v.files
}

// Uploads returns the chunked upload session manager.
func (v *Vault) Uploads() *upload.Manager {
	return v.uploads
}

// Searcher returns the semantic query facade.
func (v *Vault) Searcher() *search.Searcher {
	return v.searcher
}

// Pipeline returns the ingestion pipeline.
func (v *Vault) Pipeline() *ingestion.Pipeline {
	return v.pipeline
}

// Store returns the metadata store.
func (v *Vault) Store() *metadata.Store {
	return v.store
}
