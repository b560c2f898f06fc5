package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-patrol/importer"
	"go-patrol/report"
	"go-patrol/types"
)

func TestParseSections(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    types.SectionToggles
		wantErr bool
	}{
		{name: "defaults", in: sectionNames, want: types.AllSections()},
		{name: "all keyword", in: []string{"all"}, want: types.AllSections()},
		{name: "none", in: []string{"none"}, want: types.SectionToggles{}},
		{name: "subset", in: []string{" Trends", "risk"}, want: types.SectionToggles{TrendAnalysis: true, RiskForecast: true}},
		{name: "unknown", in: []string{"weather"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSections(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleResult(t *testing.T) *report.Result {
	t.Helper()
	gen := report.NewGenerator(report.WithClock(func() time.Time {
		return time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	}))
	res, err := gen.Generate([]types.IncidentRecord{
		{ID: "1", Description: "Theft of cellphone", Location: "Orion", Date: "2024-04-01"},
	}, types.ReportConfig{SelectedMonth: "4", SelectedYear: "2024", IncludeSections: types.AllSections()})
	require.NoError(t, err)
	return res
}

func TestWriteReport_TextToStdout(t *testing.T) {
	var out bytes.Buffer

	path, err := writeReport(sampleResult(t).Document, "text", "", &out)

	require.NoError(t, err)
	assert.Equal(t, "stdout", path)
	assert.Contains(t, out.String(), "Page 1 of")
}

func TestWriteReport_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	got, err := writeReport(sampleResult(t).Document, "text", path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Page 1 of")
}

func TestWriteReport_PDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	got, err := writeReport(sampleResult(t).Document, "pdf", path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPrintStats(t *testing.T) {
	var out bytes.Buffer

	printStats(&out, sampleResult(t), "report.pdf")

	assert.Contains(t, out.String(), "Hotspot")
	assert.Contains(t, out.String(), "Orion")
}

func TestPrintCleanupAndImport(t *testing.T) {
	var out bytes.Buffer
	printCleanup(&out, types.CleanupResult{
		Scanned: 3,
		Deleted: 1,
		Removed: []types.RecordRef{{ID: "1", DocID: "a", KeptDocID: "b", Reason: types.ReasonIdentityDuplicate}},
	})
	assert.Contains(t, out.String(), "Scanned 3 incidents, deleted 1 duplicates, 0 failed")
	assert.Contains(t, out.String(), "identity duplicate")

	out.Reset()
	printImport(&out, importer.Result{
		Records: make([]types.IncidentRecord, 2),
		Errors:  []importer.ImportError{{Row: 4, Reason: "missing description"}},
	}, 2)
	assert.Contains(t, out.String(), "Imported 2 of 3 rows")
	assert.Contains(t, out.String(), "missing description")
}
