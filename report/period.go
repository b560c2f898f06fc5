package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-patrol/aggregate"
	"go-patrol/types"
)

// Period is the reporting window a config selects.
type Period struct {
	Month time.Month // zero when every month is included
	Year  int        // zero when every year is included
}

// PeriodOf reads the month and year selection. Anything unparseable means "all".
func PeriodOf(cfg types.ReportConfig) Period {
	var p Period
	if m, ok := aggregate.ParseMonth(cfg.SelectedMonth); ok {
		p.Month = m
	}
	if y, err := strconv.Atoi(strings.TrimSpace(cfg.SelectedYear)); err == nil {
		p.Year = y
	}
	return p
}

// Label is the human form used in report text, e.g. "March 2024" or "all months of 2024".
func (p Period) Label() string {
	switch {
	case p.Month != 0 && p.Year != 0:
		return fmt.Sprintf("%s %d", p.Month, p.Year)
	case p.Month != 0:
		return fmt.Sprintf("%s (all years)", p.Month)
	case p.Year != 0:
		return fmt.Sprintf("all months of %d", p.Year)
	default:
		return "all recorded months"
	}
}

// Filename is Crime_Analysis_Report_<Month|All_Months>_<Year>.pdf.
// The current year stands in when no year is selected.
func Filename(p Period, now time.Time) string {
	month := "All_Months"
	if p.Month != 0 {
		month = p.Month.String()
	}
	year := p.Year
	if year == 0 {
		year = now.Year()
	}
	return fmt.Sprintf("Crime_Analysis_Report_%s_%d.pdf", month, year)
}
