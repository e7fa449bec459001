package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts finished upload requests by outcome category.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_uploads_total",
		Help: "Upload requests by outcome",
	}, []string{"outcome"})

	// ProcessingDuration observes end-to-end pipeline wall time.
	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "video_processing_duration_seconds",
		Help:    "Time from upload receipt to catalog commit",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// ActiveUploads tracks uploads currently being processed.
	ActiveUploads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "video_active_uploads",
		Help: "Uploads currently in the pipeline",
	})
)
