package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-patrol/classifier"
	"go-patrol/db"
	"go-patrol/layout"
	"go-patrol/logger"
	"go-patrol/metrics"
	"go-patrol/report"
	"go-patrol/types"
)

type fakeStore struct {
	records   []types.IncidentRecord
	fetchErr  error
	deleteErr error
	updateErr error
	saveErr   error

	deleted []types.RecordRef
	updated []types.IncidentRecord
	saved   []types.IncidentRecord
	logs    []types.ReportLog
}

func (f *fakeStore) FetchIncidents(context.Context) ([]types.IncidentRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func (f *fakeStore) GetIncident(_ context.Context, docID string) (types.IncidentRecord, error) {
	for _, r := range f.records {
		if r.DocID == docID {
			return r, nil
		}
	}
	return types.IncidentRecord{}, fmt.Errorf("incident %s: %w", docID, db.ErrIncidentNotFound)
}

func (f *fakeStore) SaveIncidents(_ context.Context, records []types.IncidentRecord) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, records...)
	return len(records), nil
}

func (f *fakeStore) DeleteIncidents(_ context.Context, refs []types.RecordRef) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deleted = append(f.deleted, refs...)
	return len(refs), nil
}

func (f *fakeStore) UpdateEnrichment(_ context.Context, records []types.IncidentRecord) (int, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	f.updated = append(f.updated, records...)
	return len(records), nil
}

func (f *fakeStore) SaveReportLog(_ context.Context, entry types.ReportLog) (string, error) {
	f.logs = append(f.logs, entry)
	return "log-1", nil
}

type fakeNarrator struct {
	text string
	err  error
}

func (f fakeNarrator) Narrate(context.Context, types.AggregationResult, string) (string, error) {
	return f.text, f.err
}

var clock = func() time.Time { return time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC) }

func incidents() []types.IncidentRecord {
	return []types.IncidentRecord{
		{DocID: "a", ID: "1", Description: "Theft of cellphone", Location: "Orion, Bataan", Date: "2024-04-01", UpdatedAt: "2024-04-01T00:00:00Z"},
		{DocID: "b", ID: "1", Description: "Theft of cellphone", Location: "Orion, Bataan", Date: "2024-04-01", UpdatedAt: "2024-04-03T00:00:00Z"},
		{DocID: "c", ID: "2", Description: "Shabu buy-bust operation", Location: "Limay", Date: "2024-04-02"},
	}
}

func newProcessor(store *fakeStore, n Narrator, reg *prometheus.Registry) *Processor {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}
	return &Processor{
		Store:     store,
		Generator: report.NewGenerator(report.WithClock(clock)),
		Narrator:  n,
		Metrics:   m,
		Log:       logger.NewNop(),
		Now:       clock,
	}
}

func cfg() types.ReportConfig {
	return types.ReportConfig{
		SelectedMonth:   "4",
		SelectedYear:    "2024",
		IncludeSections: types.AllSections(),
	}
}

func docText(doc layout.Document) string {
	var b strings.Builder
	for _, pg := range doc.Pages {
		for _, f := range pg.Fragments {
			if run, ok := f.(layout.TextRun); ok {
				b.WriteString(run.Text)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func TestReport(t *testing.T) {
	store := &fakeStore{records: incidents()}
	reg := prometheus.NewRegistry()
	p := newProcessor(store, fakeNarrator{text: "April saw one theft and one drug operation."}, reg)

	res, err := p.Report(context.Background(), cfg())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Aggregation.TotalCount)
	assert.Equal(t, "Crime_Analysis_Report_April_2024.pdf", res.Document.Filename)
	assert.Contains(t, docText(res.Document), "April saw one theft and one drug operation.")

	require.Len(t, store.deleted, 1)
	assert.Equal(t, "a", store.deleted[0].DocID)
	assert.Equal(t, "b", store.deleted[0].KeptDocID)

	require.Len(t, store.logs, 1)
	assert.Equal(t, types.ReportLog{
		Filename:    "Crime_Analysis_Report_April_2024.pdf",
		GeneratedAt: "2024-05-02T09:00:00Z",
		Period:      "April 2024",
		TotalCount:  2,
		Hotspot:     "Orion",
		Pages:       len(res.Document.Pages),
		Removed:     1,
		Deleted:     1,
		Narrative:   true,
	}, store.logs[0])

	m := p.Metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicatesRemoved.WithLabelValues(types.ReasonIdentityDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NarrativeTotal.WithLabelValues(metrics.ResultOK)))
}

func TestReport_FetchFailure(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("unavailable")}
	p := newProcessor(store, nil, nil)

	res, err := p.Report(context.Background(), cfg())

	assert.Nil(t, res)
	assert.ErrorContains(t, err, "unavailable")
	assert.Empty(t, store.logs)
}

func TestReport_DeletionFailureKeepsReport(t *testing.T) {
	store := &fakeStore{records: incidents(), deleteErr: errors.New("permission denied")}
	reg := prometheus.NewRegistry()
	p := newProcessor(store, nil, reg)

	res, err := p.Report(context.Background(), cfg())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Aggregation.TotalCount)
	assert.Len(t, res.Removed, 1)
	require.Len(t, store.logs, 1)
	assert.Equal(t, 0, store.logs[0].Deleted)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.ReportsTotal.WithLabelValues(metrics.ResultPartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.DeletionsFailed))
}

func TestReport_NarrativeFailureIsIgnored(t *testing.T) {
	store := &fakeStore{records: incidents()}
	p := newProcessor(store, fakeNarrator{err: errors.New("timeout")}, prometheus.NewRegistry())

	res, err := p.Report(context.Background(), cfg())
	require.NoError(t, err)

	assert.NotContains(t, docText(res.Document), "timeout")
	assert.False(t, store.logs[0].Narrative)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.NarrativeTotal.WithLabelValues(metrics.ResultNarrativeFail)))
}

func TestReport_LayoutFailureDeletesNothing(t *testing.T) {
	store := &fakeStore{records: incidents()}
	pc := layout.DefaultPageConfig()
	pc.Height = 45
	p := newProcessor(store, nil, prometheus.NewRegistry())
	p.Generator = report.NewGenerator(report.WithPageConfig(pc))

	res, err := p.Report(context.Background(), cfg())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, layout.ErrLayoutFailure)
	assert.Empty(t, store.deleted)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.ReportsTotal.WithLabelValues(metrics.ResultLayoutFailed)))
}

func TestCleanup(t *testing.T) {
	records := append(incidents(), types.IncidentRecord{
		DocID: "d", ID: "3", IncidentType: classifier.IllegalDrugs, Description: "Shabu buy-bust operation", Location: "Limay", Date: "2024-04-02",
	})
	records[2].IncidentType = classifier.IllegalDrugs
	store := &fakeStore{records: records}
	p := newProcessor(store, nil, nil)

	res, err := p.Cleanup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scanned)
	assert.Len(t, res.Removed, 2)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, 0, res.Failed)
	assert.ElementsMatch(t, []string{"a", "d"}, []string{store.deleted[0].DocID, store.deleted[1].DocID})
}

func TestCleanup_DeleteError(t *testing.T) {
	store := &fakeStore{records: incidents(), deleteErr: errors.New("boom")}
	p := newProcessor(store, nil, nil)

	res, err := p.Cleanup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 1, res.Failed)
}

func TestBackfill(t *testing.T) {
	store := &fakeStore{records: []types.IncidentRecord{
		{DocID: "a", Description: "Theft of cellphone", Location: "Orion"},
		{DocID: "b", Description: "Drowning at the beach", IncidentType: classifier.Drowning, Location: "Bagac", Municipality: "Bagac", District: "3RD DISTRICT"},
		{DocID: "c", Description: "n/a", Location: "Pilar"},
	}}
	p := newProcessor(store, nil, nil)

	res, err := p.Backfill(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.BackfillResult{Scanned: 3, Updated: 1}, res)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "a", store.updated[0].DocID)
	assert.Equal(t, classifier.Theft, store.updated[0].IncidentType)
	assert.Equal(t, "Orion", store.updated[0].Municipality)
	assert.Equal(t, "2ND DISTRICT", store.updated[0].District)
}

func TestBackfill_UpdateError(t *testing.T) {
	store := &fakeStore{
		records:   []types.IncidentRecord{{DocID: "a", Description: "Theft of cellphone"}},
		updateErr: errors.New("quota"),
	}
	p := newProcessor(store, nil, nil)

	res, err := p.Backfill(context.Background())

	assert.ErrorContains(t, err, "quota")
	assert.Equal(t, 1, res.Failed)
}

func TestSummary(t *testing.T) {
	store := &fakeStore{records: incidents()}
	p := newProcessor(store, nil, nil)

	a, err := p.Summary(context.Background(), cfg())
	require.NoError(t, err)

	assert.Equal(t, 2, a.Aggregation.TotalCount)
	assert.Len(t, a.Removed, 1)
	assert.Empty(t, store.deleted, "summary never deletes")
	assert.Empty(t, store.logs)

	_, err = newProcessor(&fakeStore{fetchErr: errors.New("down")}, nil, nil).Summary(context.Background(), cfg())
	assert.ErrorContains(t, err, "down")
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Description", "Location", "Date"},
		{"Theft of bicycle", "Hermosa", "2024-04-05"},
		{"", "Orani", "2024-04-06"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImport(t *testing.T) {
	store := &fakeStore{}
	p := newProcessor(store, nil, prometheus.NewRegistry())

	res, saved, err := p.Import(context.Background(), bytes.NewReader(workbookBytes(t)))
	require.NoError(t, err)

	assert.Equal(t, 1, saved)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "Theft of bicycle", store.saved[0].Description)
	assert.Equal(t, "2024-05-02T09:00:00Z", store.saved[0].CreatedAt)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.ImportRowsTotal.WithLabelValues(metrics.ResultRowImported)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.ImportRowsTotal.WithLabelValues(metrics.ResultRowRejected)))
}

func TestImport_SaveError(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("quota exceeded")}
	p := newProcessor(store, nil, nil)

	_, saved, err := p.Import(context.Background(), bytes.NewReader(workbookBytes(t)))

	assert.Equal(t, 0, saved)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestImport_BadWorkbook(t *testing.T) {
	p := newProcessor(&fakeStore{}, nil, nil)

	_, _, err := p.Import(context.Background(), strings.NewReader("not xlsx"))

	assert.ErrorContains(t, err, "failed to open workbook")
}

func TestIncident(t *testing.T) {
	store := &fakeStore{records: incidents()}
	p := newProcessor(store, nil, nil)

	rec, err := p.Incident(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, classifier.IllegalDrugs, rec.IncidentType)
	assert.Equal(t, "Limay", rec.Municipality)
	assert.Equal(t, "2ND DISTRICT", rec.District)
	assert.Empty(t, store.updated, "lookups never write")

	_, err = p.Incident(context.Background(), "missing")
	assert.ErrorIs(t, err, db.ErrIncidentNotFound)
}
