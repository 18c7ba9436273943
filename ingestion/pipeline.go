package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/chunk"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/index"
	"github.com/poiesic/docvault/metadata"
)

// Pipeline runs uploaded files through extraction, chunking, embedding and
// indexing on a bounded worker pool. Jobs are processed asynchronously;
// outcomes are recorded on the file's metadata record rather than returned
// to the submitter.
type Pipeline struct {
	store          *metadata.Store
	extractor      extract.Extractor
	embedder       ai.Embedder
	index          index.Index
	splitter       *chunk.Splitter
	pool           *ants.Pool
	wg             sync.WaitGroup
	draining       atomic.Bool
	embeddingModel string
	logger         *slog.Logger
}

// Job identifies one uploaded file to process.
type Job struct {
	UserID   string
	FileID   string
	Path     string
	Name     string
	MimeType string
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithSplitter sets a custom chunk splitter.
func WithSplitter(splitter *chunk.Splitter) Option {
	return func(p *Pipeline) error {
		if splitter == nil {
			return ErrSplitterRequired
		}
		p.splitter = splitter
		return nil
	}
}

// WithEmbeddingModel records the model name stamped on completed records.
func WithEmbeddingModel(model string) Option {
	return func(p *Pipeline) error {
		p.embeddingModel = model
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	store *metadata.Store,
	extractor extract.Extractor,
	embedder ai.Embedder,
	idx index.Index,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	splitter, err := chunk.NewSplitter(chunk.DefaultConfig())
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		index:     idx,
		splitter:  splitter,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.pool.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Submit queues a job for asynchronous processing. The call blocks only
// when every worker is busy and the pool's internal queue is full; job
// failures surface on the file record, not here.
func (p *Pipeline) Submit(job Job) error {
	if p.draining.Load() {
		return ErrDraining
	}

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		p.run(context.Background(), job)
	})
	if err != nil {
		p.wg.Done()
		return err
	}
	return nil
}

// Drain stops accepting new jobs and waits for in-flight jobs to finish,
// or for ctx to expire. The pool is released either way; the pipeline
// must not be used afterwards.
func (p *Pipeline) Drain(ctx context.Context) error {
	p.draining.Store(true)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	defer p.pool.Release()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
