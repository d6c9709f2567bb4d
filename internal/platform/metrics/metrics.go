package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics for the job pipeline.
type Metrics struct {
	JobsProcessed *prometheus.CounterVec
	JobsInFlight  prometheus.Gauge
	JobDuration   prometheus.Histogram
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg, which lets tests use a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_jobs_processed_total",
			Help: "Upload jobs handled by the pipeline, by outcome",
		}, []string{"outcome"}), // outcome: "ok", "failed"
		JobsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "vitae_jobs_in_flight",
			Help: "Upload jobs currently being reconciled",
		}),
		JobDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitae_job_duration_seconds",
			Help:    "Wall time of one upload job",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementJobs counts a finished job under outcome.
func (m *Metrics) IncrementJobs(outcome string) {
	if m != nil {
		m.JobsProcessed.WithLabelValues(outcome).Inc()
	}
}

// ObserveJob records the duration of one job.
func (m *Metrics) ObserveJob(d time.Duration) {
	if m != nil {
		m.JobDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) JobStarted() {
	if m != nil {
		m.JobsInFlight.Inc()
	}
}

func (m *Metrics) JobFinished() {
	if m != nil {
		m.JobsInFlight.Dec()
	}
}
