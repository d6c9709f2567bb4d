package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for reconciliation and collapsing.
type Metrics struct {
	DateParseFailures prometheus.Counter

	// Cycle outcomes: "ok", "failed"
	Cycles       *prometheus.CounterVec
	CycleLatency prometheus.Histogram

	// Sub-record writes by category and operation ("inserted", "updated", "skipped")
	Records *prometheus.CounterVec

	PersonsCreated prometheus.Counter

	// Artifacts by visualization type and outcome
	Artifacts *prometheus.CounterVec

	PersonsCollapsed        prometheus.Counter
	CollapseGroupsFailed    prometheus.Counter
	RecordsFoldedByCollapse *prometheus.CounterVec
}

// New registers the metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DateParseFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "vitae_date_parse_failures_total",
			Help: "Date expressions that could not be parsed and were stored as absent",
		}),
		Cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_reconciliation_cycles_total",
			Help: "Reconciliation cycles by outcome",
		}, []string{"outcome"}),
		CycleLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitae_reconciliation_cycle_duration_seconds",
			Help:    "Duration of the reconciliation transaction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_records_total",
			Help: "Sub-record upsert outcomes by category and operation",
		}, []string{"category", "op"}),
		PersonsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vitae_persons_created_total",
			Help: "Persons created by identity resolution",
		}),
		Artifacts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_artifacts_total",
			Help: "Generated artifacts by type and outcome",
		}, []string{"type", "outcome"}),
		PersonsCollapsed: f.NewCounter(prometheus.CounterOpts{
			Name: "vitae_persons_collapsed_total",
			Help: "Duplicate Persons merged into a canonical Person",
		}),
		CollapseGroupsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "vitae_collapse_groups_failed_total",
			Help: "Email groups whose collapse transaction rolled back",
		}),
		RecordsFoldedByCollapse: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vitae_collapse_records_folded_total",
			Help: "Sub-records deleted because they duplicated a natural key after a merge",
		}, []string{"category"}),
	}
}

// IncrementDateParseFailures is passed to the date normalizer as its failure hook.
func (m *Metrics) IncrementDateParseFailures() {
	if m != nil {
		m.DateParseFailures.Inc()
	}
}

func (m *Metrics) IncrementCycle(outcome string) {
	if m != nil {
		m.Cycles.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveCycleLatency(d time.Duration) {
	if m != nil {
		m.CycleLatency.Observe(d.Seconds())
	}
}

// AddRecords counts n sub-records of category under op.
func (m *Metrics) AddRecords(category, op string, n int) {
	if m != nil && n > 0 {
		m.Records.WithLabelValues(category, op).Add(float64(n))
	}
}

func (m *Metrics) IncrementPersonsCreated() {
	if m != nil {
		m.PersonsCreated.Inc()
	}
}

func (m *Metrics) IncrementArtifact(kind, outcome string) {
	if m != nil {
		m.Artifacts.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) AddPersonsCollapsed(n int) {
	if m != nil && n > 0 {
		m.PersonsCollapsed.Add(float64(n))
	}
}

func (m *Metrics) IncrementCollapseGroupFailed() {
	if m != nil {
		m.CollapseGroupsFailed.Inc()
	}
}

func (m *Metrics) AddRecordsFolded(category string, n int) {
	if m != nil && n > 0 {
		m.RecordsFoldedByCollapse.WithLabelValues(category).Add(float64(n))
	}
}
