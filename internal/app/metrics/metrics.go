package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks per-engine transcription outcomes.
type Metrics struct {
	registry *prometheus.Registry

	transcriptionsTotal   *prometheus.CounterVec
	transcriptionDuration *prometheus.HistogramVec
	uploadBytes           prometheus.Histogram
}

// New creates the harness metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		transcriptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speechbench_transcriptions_total",
				Help: "Total transcription calls per engine and outcome.",
			},
			[]string{"engine", "status"},
		),
		transcriptionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "speechbench_transcription_duration_seconds",
				Help:    "Wall-clock transcription duration per engine.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"engine"},
		),
		uploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "speechbench_upload_bytes",
				Help:    "Size of accepted audio uploads.",
				Buckets: prometheus.ExponentialBuckets(16<<10, 4, 8),
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transcriptionsTotal,
		m.transcriptionDuration,
		m.uploadBytes,
	)

	return m
}

// Handler serves the registry for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTranscription records one engine call. status is "success" or the
// engine error code.
func (m *Metrics) ObserveTranscription(engine, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.transcriptionsTotal.WithLabelValues(engine, status).Inc()
	m.transcriptionDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// ObserveUpload records an accepted upload size.
func (m *Metrics) ObserveUpload(bytes int64) {
	if m == nil {
		return
	}
	m.uploadBytes.Observe(float64(bytes))
}
