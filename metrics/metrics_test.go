package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReport(ResultOK, 120*time.Millisecond, 3)
	m.ObserveReport(ResultLayoutFailed, time.Millisecond, 0)
	m.AddDuplicates("identity_duplicate", 2)
	m.AddDeletionFailures(1)
	m.ObserveJob("cleanup", ResultOK)
	m.AddImportRows(ResultRowImported, 10)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues(ResultLayoutFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DuplicatesRemoved.WithLabelValues("identity_duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeletionsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("cleanup", ResultOK)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ImportRowsTotal.WithLabelValues(ResultRowImported)))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReport(ResultOK, time.Second, 1)
		m.AddDuplicates("content_duplicate", 1)
		m.AddDeletionFailures(1)
		m.ObserveNarrative(ResultOK)
		m.ObserveJob("backfill", ResultOK)
		m.AddImportRows(ResultRowRejected, 1)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).ObserveReport(ResultOK, time.Second, 2)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `patrol_report_generated_total{result="ok"} 1`)
}
