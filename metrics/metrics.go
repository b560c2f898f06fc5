// Package metrics holds the Prometheus instruments for the patrol service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "patrol"

// Report outcomes.
const (
	ResultOK            = "ok"
	ResultFetchFailed   = "fetch_failed"
	ResultLayoutFailed  = "layout_failed"
	ResultPartial       = "partial"
	ResultJobFailed     = "failed"
	ResultRowImported   = "imported"
	ResultRowRejected   = "rejected"
	ResultNarrativeFail = "narrative_failed"
)

// Metrics is safe to use as a nil pointer; every method then does nothing.
type Metrics struct {
	ReportsTotal      *prometheus.CounterVec
	ReportDuration    prometheus.Histogram
	ReportPages       prometheus.Histogram
	DuplicatesRemoved *prometheus.CounterVec
	DeletionsFailed   prometheus.Counter
	NarrativeTotal    *prometheus.CounterVec
	JobRunsTotal      *prometheus.CounterVec
	ImportRowsTotal   *prometheus.CounterVec
}

// New creates and registers all metrics on reg, or the default registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "generated_total",
			Help:      "Report generation attempts by result",
		}, []string{"result"}),
		ReportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Time to fetch, analyze and lay out a report",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportPages: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "pages",
			Help:      "Pages per generated report",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		DuplicatesRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedupe",
			Name:      "removed_total",
			Help:      "Duplicate incidents found, by reason",
		}, []string{"reason"}),
		DeletionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedupe",
			Name:      "deletions_failed_total",
			Help:      "Duplicate deletions that did not reach the store",
		}),
		NarrativeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narrative",
			Name:      "requests_total",
			Help:      "Narrative requests by result",
		}, []string{"result"}),
		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "runs_total",
			Help:      "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
		ImportRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Spreadsheet rows by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveReport(result string, took time.Duration, pages int) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(result).Inc()
	m.ReportDuration.Observe(took.Seconds())
	if pages > 0 {
		m.ReportPages.Observe(float64(pages))
	}
}

func (m *Metrics) AddDuplicates(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DuplicatesRemoved.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) AddDeletionFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DeletionsFailed.Add(float64(n))
}

func (m *Metrics) ObserveNarrative(result string) {
	if m == nil {
		return
	}
	m.NarrativeTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveJob(job, result string) {
	if m == nil {
		return
	}
	m.JobRunsTotal.WithLabelValues(job, result).Inc()
}

func (m *Metrics) AddImportRows(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ImportRowsTotal.WithLabelValues(result).Add(float64(n))
}
