// Package importer reads incident spreadsheets exported from the patrol dashboard.
package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"go-patrol/aggregate"
	"go-patrol/types"
)

// ImportError reports a spreadsheet row that was not imported. Row is 1-based as shown in Excel.
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e ImportError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result is the outcome of one workbook import.
type Result struct {
	Records []types.IncidentRecord `json:"records"`
	Errors  []ImportError          `json:"errors"`
}

type setter func(*types.IncidentRecord, string)

var columns = map[string]setter{
	"id":                 func(r *types.IncidentRecord, v string) { r.ID = v },
	"description":        func(r *types.IncidentRecord, v string) { r.Description = v },
	"location":           func(r *types.IncidentRecord, v string) { r.Location = v },
	"incident type":      func(r *types.IncidentRecord, v string) { r.IncidentType = v },
	"type":               func(r *types.IncidentRecord, v string) { r.IncidentType = v },
	"date":               func(r *types.IncidentRecord, v string) { r.Date = normalizeDate(v) },
	"time":               func(r *types.IncidentRecord, v string) { r.Time = v },
	"status":             func(r *types.IncidentRecord, v string) { r.Status = v },
	"action type":        func(r *types.IncidentRecord, v string) { r.ActionType = v },
	"action description": func(r *types.IncidentRecord, v string) { r.ActionDescription = v },
	"assigned officer":   func(r *types.IncidentRecord, v string) { r.AssignedOfficer = v },
	"priority":           func(r *types.IncidentRecord, v string) { r.Priority = normalizePriority(v) },
	"district":           func(r *types.IncidentRecord, v string) { r.District = v },
	"municipality":       func(r *types.IncidentRecord, v string) { r.Municipality = v },
}

// ParseWorkbook reads the first sheet of an xlsx workbook. The first row is the header.
func ParseWorkbook(r io.Reader, now time.Time) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Result{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := make([]setter, len(rows[0]))
	known := 0
	for i, name := range rows[0] {
		if set, ok := columns[strings.ToLower(strings.TrimSpace(name))]; ok {
			header[i] = set
			known++
		}
	}
	if known == 0 {
		return Result{}, fmt.Errorf("sheet %q has no recognised header columns", sheet)
	}

	stamp := now.UTC().Format(time.RFC3339)
	res := Result{Records: []types.IncidentRecord{}, Errors: []ImportError{}}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := types.IncidentRecord{}
		for c, cell := range row {
			if c < len(header) && header[c] != nil {
				header[c](&rec, strings.TrimSpace(cell))
			}
		}
		if rec.Description == "" {
			res.Errors = append(res.Errors, ImportError{Row: i + 2, Reason: "missing description"})
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = stamp
		rec.UpdatedAt = stamp
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeDate stores recognised dates as YYYY-MM-DD and keeps anything else verbatim.
func normalizeDate(v string) string {
	if t, ok := aggregate.ParseDate(v); ok {
		return t.Format("2006-01-02")
	}
	return v
}

func normalizePriority(v string) types.Priority {
	for _, p := range []types.Priority{types.Low, types.Medium, types.High, types.Critical} {
		if strings.EqualFold(v, string(p)) {
			return p
		}
	}
	return types.Priority(v)
}
