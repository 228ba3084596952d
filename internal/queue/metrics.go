package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_jobs_enqueued_total",
			Help: "Jobs added to a queue.",
		},
		[]string{"queue"},
	)

	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_jobs_processed_total",
			Help: "Job attempts by outcome (completed, retried, failed).",
		},
		[]string{"queue", "outcome"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "files_job_duration_seconds",
			Help:    "Duration of job attempts.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"queue"},
	)
)
