package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-patrol/classifier"
	"go-patrol/db"
	"go-patrol/gazetteer"
	"go-patrol/importer"
	"go-patrol/layout"
	"go-patrol/location"
	"go-patrol/metrics"
	"go-patrol/report"
	"go-patrol/types"
)

var clock = func() time.Time { return time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC) }

type fakeService struct {
	gen       *report.Generator
	records   []types.IncidentRecord
	reportErr error
	result    *report.Result
	lastCfg   types.ReportConfig
}

// strayFragment is a fragment no backend knows how to draw.
type strayFragment struct{ layout.Fragment }

func (f *fakeService) Report(_ context.Context, cfg types.ReportConfig) (*report.Result, error) {
	f.lastCfg = cfg
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return f.gen.Generate(f.records, cfg)
}

func (f *fakeService) Summary(_ context.Context, cfg types.ReportConfig) (report.Analysis, error) {
	return f.gen.Analyze(f.records, cfg), nil
}

func (f *fakeService) Incident(_ context.Context, docID string) (types.IncidentRecord, error) {
	for _, r := range f.records {
		if r.DocID == docID {
			rec, _ := f.gen.Enrich(r)
			return rec, nil
		}
	}
	return types.IncidentRecord{}, fmt.Errorf("incident %s: %w", docID, db.ErrIncidentNotFound)
}

func (f *fakeService) Cleanup(context.Context) (types.CleanupResult, error) {
	return types.CleanupResult{Scanned: 3, Deleted: 1}, nil
}

func (f *fakeService) Import(_ context.Context, r io.Reader) (importer.Result, int, error) {
	res, err := importer.ParseWorkbook(r, clock())
	if err != nil {
		return importer.Result{}, 0, err
	}
	return res, len(res.Records), nil
}

func setup(t *testing.T) (*gin.Engine, *fakeService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		gen: report.NewGenerator(report.WithClock(clock)),
		records: []types.IncidentRecord{
			{DocID: "doc-1", ID: "1", Description: "Theft of cellphone", Location: "Orion, Bataan", Date: "2024-04-01"},
			{ID: "2", Description: "Shabu buy-bust operation", Location: "Limay", Date: "2024-04-02"},
		},
	}
	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveJob("cleanup", metrics.ResultOK)

	r := SetupRouter(Deps{
		Service:    svc,
		Classifier: classifier.Default(),
		Resolver:   location.New(gazetteer.Default()),
		Memo: func(m types.Memo) types.Memo {
			if m.For == "" {
				m.For = "The Provincial Director"
			}
			return m
		},
		Gatherer:  reg,
		ClientURL: "https://dashboard.example",
	})
	return r, svc
}

func do(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func preflight(r http.Handler, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRoot(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello, welcome to Go Patrol!", decode(t, w)["message"])
}

func TestCORS(t *testing.T) {
	r, _ := setup(t)

	w := preflight(r, http.MethodGet, "/", "https://dashboard.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://dashboard.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Report-Pages")

	w = preflight(r, http.MethodOptions, "/api/patrol/reports", "https://dashboard.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")

	w = preflight(r, http.MethodGet, "/", "https://elsewhere.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetrics(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/metrics", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "patrol_")
}

func TestGenerateReport_PDF(t *testing.T) {
	r, svc := setup(t)

	w := do(r, http.MethodPost, "/api/patrol/reports", nil, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Crime_Analysis_Report_All_Months_2024.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	assert.Equal(t, types.AllSections(), svc.lastCfg.IncludeSections)
	assert.Equal(t, "The Provincial Director", svc.lastCfg.Memo.For)
}

func TestGenerateReport_TextPreview(t *testing.T) {
	r, svc := setup(t)

	body := `{"selectedMonth":"4","selectedYear":"2024","memo":{"for":"Chief of Police"}}`
	w := do(r, http.MethodPost, "/api/patrol/reports?format=text", strings.NewReader(body), "application/json")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, strings.ToUpper(w.Body.String()), "APRIL 2024")
	assert.Contains(t, w.Body.String(), "Page 1 of")
	assert.Equal(t, "Chief of Police", svc.lastCfg.Memo.For)
	assert.True(t, svc.lastCfg.IncludeSections.RiskForecast, "omitted toggles keep their defaults")
	assert.NotEmpty(t, w.Header().Get("X-Report-Pages"))
}

func TestGenerateReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{name: "bad json", body: "{", want: http.StatusBadRequest},
		{name: "layout failure", err: fmt.Errorf("compose: %w", layout.ErrLayoutFailure), want: http.StatusUnprocessableEntity},
		{name: "store failure", err: errors.New("fetch failed"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setup(t)
			svc.reportErr = tt.err

			w := do(r, http.MethodPost, "/api/patrol/reports", strings.NewReader(tt.body), "application/json")

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestGenerateReport_RenderFailure(t *testing.T) {
	for _, path := range []string{"/api/patrol/reports", "/api/patrol/reports?format=text"} {
		t.Run(path, func(t *testing.T) {
			r, svc := setup(t)
			svc.result = &report.Result{Document: layout.Document{
				Filename: "broken.pdf",
				Config:   layout.DefaultPageConfig(),
				Pages:    []layout.Page{{Fragments: []layout.Fragment{strayFragment{}}}},
			}}

			w := do(r, http.MethodPost, path, nil, "")

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, decode(t, w)["error"], "unsupported fragment")
		})
	}
}

func TestGetIncident(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/api/patrol/incidents/doc-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, classifier.Theft, out["incidentType"])
	assert.Equal(t, "Orion", out["municipality"])

	w = do(r, http.MethodGet, "/api/patrol/incidents/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummary(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/api/patrol/summary?month=4&year=2024", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "April 2024", out["period"])
	agg := out["aggregation"].(map[string]any)
	assert.Equal(t, 2.0, agg["totalCount"])
}

func TestClassify(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/patrol/classify", strings.NewReader(`{"description":"Shabu buy-bust operation"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, classifier.IllegalDrugs, decode(t, w)["incidentType"])

	w = do(r, http.MethodPost, "/api/patrol/classify", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveLocation(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/patrol/resolve-location", strings.NewReader(`{"location":"Brgy. Wawa, Orion, Bataan"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Orion", out["municipality"])
	assert.Equal(t, "2ND DISTRICT", out["district"])
	assert.Equal(t, true, out["matched"])
	assert.Equal(t, []any{"Orion"}, out["areas"])

	w = do(r, http.MethodPost, "/api/patrol/resolve-location", strings.NewReader(`{"location":"   "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanup(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/patrol/cleanup", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["deleted"])
}

func multipartWorkbook(t *testing.T, rows [][]any) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "incidents.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestImport(t *testing.T) {
	r, _ := setup(t)
	body, ct := multipartWorkbook(t, [][]any{
		{"Description", "Location"},
		{"Theft of bicycle", "Hermosa"},
		{"", "Orani"},
	})

	w := do(r, http.MethodPost, "/api/patrol/import", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, 1.0, out["imported"])
	assert.Len(t, out["rejected"], 1)
}

func TestImport_MissingFile(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/patrol/import", strings.NewReader(""), "multipart/form-data; boundary=x")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
