package aggregate

import (
	"strconv"
	"strings"
	"time"

	"go-patrol/types"
)

// dateLayouts are tried in order. Dates are typed by hand in the field, so
// several spellings of the same day show up in one collection.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

// ParseDate reads a loosely formatted date. The second return is false when
// nothing matched; such records count as "unknown date".
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthKey is the chronological bucket key, e.g. "2024-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonth accepts "1".."12", a full month name or its three-letter form.
func ParseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return m, true
		}
	}
	return 0, false
}

// FilterPeriod keeps records dated within the selected month and year.
// "all" or an empty value disables that part of the filter. Once any filter
// is active, records with an unparseable date are dropped.
func FilterPeriod(records []types.IncidentRecord, month, year string) []types.IncidentRecord {
	m, filterMonth := ParseMonth(month)
	y, errYear := strconv.Atoi(strings.TrimSpace(year))
	filterYear := errYear == nil

	if !filterMonth && !filterYear {
		return append(make([]types.IncidentRecord, 0, len(records)), records...)
	}

	out := make([]types.IncidentRecord, 0, len(records))
	for _, r := range records {
		t, ok := ParseDate(r.Date)
		if !ok {
			continue
		}
		if filterMonth && t.Month() != m {
			continue
		}
		if filterYear && t.Year() != y {
			continue
		}
		out = append(out, r)
	}
	return out
}
