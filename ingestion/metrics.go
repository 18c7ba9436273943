package ingestion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_ingestion_jobs_processed_total",
		Help: "Number of ingestion jobs that completed successfully.",
	})
	jobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_ingestion_jobs_failed_total",
		Help: "Number of ingestion jobs that failed, by stage kind.",
	}, []string{"kind"})
	chunksIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_ingestion_chunks_indexed_total",
		Help: "Number of chunks written to the vector index.",
	})
	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docvault_ingestion_job_duration_seconds",
		Help:    "Wall time of ingestion jobs from pickup to completion.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
