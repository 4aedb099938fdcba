// Package monitoring exposes operational visibility for the prediction
// service: Prometheus metrics, a live WebSocket feed, and an artifact drift
// watcher.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions",
		},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions by error code",
		},
		[]string{"code"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "End-to-end duration of prediction requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether the trained pipeline artifact is loaded (1) or not (0)",
		},
	)
)
