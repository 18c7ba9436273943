package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/metadata"
)

// run processes a single job end to end. It never returns an error:
// failures are stamped on the file record and logged. A panicking stage
// must not take the worker (or the process) down with it.
func (p *Pipeline) run(ctx context.Context, job Job) {
	logger := p.logger.With("user", job.UserID, "file_id", job.FileID, "name", job.Name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during ingestion", "panic", r)
			p.recordFailure(ctx, job, stageErr(KindValidation, errors.New("internal processing error")), logger)
		}
	}()

	logger.Info("processing file")

	if err := p.process(ctx, job, logger); err != nil {
		jobDuration.Observe(time.Since(start).Seconds())
		p.recordFailure(ctx, job, err, logger)
		return
	}

	jobDuration.Observe(time.Since(start).Seconds())
	jobsProcessed.Inc()
	logger.Info("file ready", "elapsed", time.Since(start))
}

func (p *Pipeline) process(ctx context.Context, job Job, logger *slog.Logger) error {
	text, err := p.extractor.Extract(ctx, job.Path, job.MimeType)
	if err != nil {
		return stageErr(KindExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return stageErr(KindExtraction, ErrNoTextExtracted)
	}

	chunks := p.splitter.Split(text, 1, job.FileID)
	logger.Debug("split into chunks", "chunks", len(chunks))

	if err := p.store.UpdateRecord(ctx, job.UserID, job.FileID, metadata.RecordUpdate{
		Status:     metadata.Ptr(core.StatusProcessing),
		ChunkCount: metadata.Ptr(len(chunks)),
	}); err != nil {
		return stageErr(KindStoreIO, err)
	}

	if err := p.embed(ctx, chunks); err != nil {
		return err
	}

	stored, err := p.index.Upsert(ctx, job.UserID, job.FileID, chunks)
	if err != nil {
		return stageErr(KindIndex, err)
	}
	chunksIndexed.Add(float64(stored))

	if err := p.store.UpdateRecord(ctx, job.UserID, job.FileID, metadata.RecordUpdate{
		Status:         metadata.Ptr(core.StatusReady),
		ChunkCount:     metadata.Ptr(len(chunks)),
		ProcessedAt:    metadata.Ptr(time.Now().UTC()),
		EmbeddingModel: metadata.Ptr(p.embeddingModel),
	}); err != nil {
		return stageErr(KindStoreIO, err)
	}

	return nil
}

// embed fills in chunk vectors one chunk at a time. Whitespace-only
// chunks keep an empty vector and are skipped at query time.
func (p *Pipeline) embed(ctx context.Context, chunks []core.Chunk) error {
	for i := range chunks {
		if strings.TrimSpace(chunks[i].Text) == "" {
			chunks[i].Vector = []float32{}
			continue
		}

		vector, err := p.embedder.EmbedText(ctx, chunks[i].Text)
		if err != nil {
			return stageErr(KindEmbedding, err)
		}
		if len(vector) == 0 {
			return stageErr(KindEmbedding, errors.New("embedder returned empty vector"))
		}
		chunks[i].Vector = vector
	}
	return nil
}

// recordFailure marks the file record as errored. If the store itself is
// down there is nothing left to do but log.
func (p *Pipeline) recordFailure(ctx context.Context, job Job, cause error, logger *slog.Logger) {
	var kind Kind
	var stage *StageError
	if errors.As(cause, &stage) {
		kind = stage.Kind
	} else {
		kind = KindValidation
	}
	jobsFailed.WithLabelValues(string(kind)).Inc()

	logger.Error("ingestion failed", "err", cause)

	err := p.store.UpdateRecord(ctx, job.UserID, job.FileID, metadata.RecordUpdate{
		Status: metadata.Ptr(core.StatusError),
		Error:  metadata.Ptr(cause.Error()),
	})
	if err != nil {
		logger.Error("error recording failure", "err", err)
	}
}
