package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-patrol/layout"
	"go-patrol/textnorm"
	"go-patrol/types"
)

// Section titles. Numbers are fixed; a disabled section leaves a gap.
const (
	TitleDataCleaning    = "Data Cleaning & Categorization"
	TitleSummary         = "Summary Generation"
	TitleTrends          = "Trend & Pattern Analysis"
	TitleRootCause       = "Root Cause & Contributing Factors"
	TitleRecommendations = "Actionable Recommendations"
	TitleRiskForecast    = "Risk Forecasting"
	TitleNotes           = "Additional Notes"
)

const memoDateLayout = "January 2, 2006"

// NoIncidents is the narrative every included section carries for an empty period.
func NoIncidents(p Period) string {
	return fmt.Sprintf("No incidents were recorded for %s.", p.Label())
}

func numbered(n int, title string) layout.Heading {
	return layout.Heading{Text: fmt.Sprintf("%d. %s", n, title)}
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func (g *Generator) sections(a Analysis, cfg types.ReportConfig, narrative string, now time.Time) []layout.Section {
	on := cfg.IncludeSections
	agg := a.Aggregation
	empty := agg.TotalCount == 0

	body := func(n int, title string, include bool, build func() []layout.Block) layout.Section {
		s := layout.Section{Name: title, Include: include}
		if !include {
			return s
		}
		s.Blocks = []layout.Block{numbered(n, title)}
		if empty {
			s.Blocks = append(s.Blocks, layout.Paragraph{Text: NoIncidents(a.Period)})
			return s
		}
		s.Blocks = append(s.Blocks, build()...)
		return s
	}

	notes := strings.TrimSpace(cfg.CustomNotes)
	return []layout.Section{
		g.memorandum(a.Period, cfg.Memo, now),
		body(1, TitleDataCleaning, on.DataCleaning, func() []layout.Block { return g.dataCleaning(a) }),
		body(2, TitleSummary, on.MunicipalityBreakdown, func() []layout.Block { return g.summary(a, narrative) }),
		body(3, TitleTrends, on.TrendAnalysis, func() []layout.Block { return g.trends(agg) }),
		body(4, TitleRootCause, on.RootCause, func() []layout.Block { return g.rootCauses(agg) }),
		body(5, TitleRecommendations, on.Recommendations, func() []layout.Block { return g.recommendations(agg) }),
		body(6, TitleRiskForecast, on.RiskForecast, func() []layout.Block { return g.riskForecast(agg) }),
		{
			Name:    TitleNotes,
			Include: notes != "",
			Blocks:  []layout.Block{layout.Heading{Text: TitleNotes}, layout.Paragraph{Text: notes}},
		},
	}
}

// memorandum always opens the document with the FOR, FROM, DATE and SUBJECT lines.
func (g *Generator) memorandum(p Period, m types.Memo, now time.Time) layout.Section {
	date := textnorm.Collapse(m.Date)
	if date == "" {
		date = now.Format(memoDateLayout)
	}
	subject := textnorm.Collapse(m.Subject)
	if subject == "" {
		subject = "Crime Analysis Report for " + p.Label()
	}
	lines := []string{
		"FOR: " + textnorm.Collapse(m.For),
		"FROM: " + textnorm.Collapse(m.From),
		"DATE: " + date,
		"SUBJECT: " + subject,
	}
	return layout.Section{
		Name:    "memorandum",
		Include: true,
		Blocks: []layout.Block{
			layout.Paragraph{Text: strings.Join(lines, "\n"), Bold: true},
			layout.Heading{Text: "Crime Analysis Report for " + p.Label()},
		},
	}
}

func (g *Generator) dataCleaning(a Analysis) []layout.Block {
	s := a.Stats
	intro := fmt.Sprintf(
		"%d records were received. %d were set aside for blank or placeholder descriptions. "+
			"%d identity duplicates and %d content duplicates were removed, leaving %d clean records, "+
			"%d of which fall within %s.",
		s.Received, s.Placeholders, s.IdentityDuplicates, s.ContentDuplicates, s.Clean, s.InPeriod, a.Period.Label())

	rows := make([][]string, 0, len(a.Aggregation.TopTypes))
	for _, rc := range a.Aggregation.TopTypes {
		rows = append(rows, []string{rc.Label, strconv.Itoa(rc.Count), pct(rc.Percent)})
	}

	return []layout.Block{
		layout.Paragraph{Text: intro},
		layout.BulletList{Items: []string{
			fmt.Sprintf("Records categorized from their description: %d", s.Reclassified),
			fmt.Sprintf("Records without a recognized municipality: %d", s.Unresolved),
			fmt.Sprintf("Records with an unreadable date: %d", a.Aggregation.UnknownDateCount),
		}},
		layout.Table{Header: []string{"Category", "Incidents", "Share"}, Rows: rows, ColumnWidths: []float64{3, 1, 1}},
	}
}

func (g *Generator) summary(a Analysis, narrative string) []layout.Block {
	agg := a.Aggregation
	top := agg.TopTypes[0]
	text := fmt.Sprintf("A total of %d incidents were recorded for %s. The most frequent category was %s with %d incidents (%s).",
		agg.TotalCount, a.Period.Label(), top.Label, top.Count, pct(top.Percent))
	if agg.Hotspot != types.HotspotNone {
		hot := agg.TopMunicipalities[0]
		text += fmt.Sprintf(" %s was the hotspot with %d incidents (%s).", hot.Label, hot.Count, pct(hot.Percent))
	}

	blocks := []layout.Block{layout.Paragraph{Text: text}}
	if n := strings.TrimSpace(narrative); n != "" {
		blocks = append(blocks, layout.Paragraph{Text: n})
	}

	if len(agg.TopMunicipalities) == 0 {
		return append(blocks, layout.Paragraph{Text: "No incident locations matched a known municipality."})
	}
	gaz := g.resolver.Gazetteer()
	rows := make([][]string, 0, len(agg.TopMunicipalities))
	for _, rc := range agg.TopMunicipalities {
		district, _ := gaz.DistrictOf(rc.Label)
		rows = append(rows, []string{rc.Label, district, strconv.Itoa(rc.Count), pct(rc.Percent)})
	}
	blocks = append(blocks, layout.Table{
		Header:       []string{"Municipality", "District", "Incidents", "Share"},
		Rows:         rows,
		ColumnWidths: []float64{3, 2, 1, 1},
	})

	if len(agg.TopDistricts) > 0 {
		rows = make([][]string, 0, len(agg.TopDistricts))
		for _, rc := range agg.TopDistricts {
			rows = append(rows, []string{rc.Label, strconv.Itoa(rc.Count), pct(rc.Percent)})
		}
		blocks = append(blocks, layout.Table{Header: []string{"District", "Incidents", "Share"}, Rows: rows, ColumnWidths: []float64{3, 1, 1}})
	}
	return blocks
}

func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}

func (g *Generator) trends(agg types.AggregationResult) []layout.Block {
	var blocks []layout.Block

	if len(agg.Months) == 0 {
		blocks = append(blocks, layout.Paragraph{Text: "No incident dates could be read for a monthly breakdown."})
	} else {
		rows := make([][]string, 0, len(agg.Months))
		for _, m := range agg.Months {
			rows = append(rows, []string{monthLabel(m), strconv.Itoa(agg.CountsByMonth[m])})
		}
		blocks = append(blocks,
			layout.Table{Header: []string{"Month", "Incidents"}, Rows: rows, ColumnWidths: []float64{3, 1}},
			layout.Paragraph{Text: trendSentence(agg.Trend)},
		)
	}

	items := []string{
		fmt.Sprintf("Morning (00:00 to 11:59): %d", agg.CountsByTimeOfDay[types.Morning]),
		fmt.Sprintf("Afternoon (12:00 to 17:59): %d", agg.CountsByTimeOfDay[types.Afternoon]),
		fmt.Sprintf("Evening (18:00 to 23:59): %d", agg.CountsByTimeOfDay[types.Evening]),
	}
	blocks = append(blocks, layout.BulletList{Items: items})
	if agg.PeakTimeOfDay != types.HotspotNone {
		blocks = append(blocks, layout.Paragraph{Text: fmt.Sprintf("Incidents peak in the %s.", agg.PeakTimeOfDay)})
	} else {
		blocks = append(blocks, layout.Paragraph{Text: "No incident times could be read."})
	}
	return blocks
}

func trendSentence(t types.Trend) string {
	if t.Direction == types.TrendInsufficient {
		return "At least two months of dated incidents are needed to establish a trend."
	}
	from, to := monthLabel(t.PreviousMonth), monthLabel(t.CurrentMonth)
	switch t.Direction {
	case types.TrendIncreasing:
		if t.PreviousCount == 0 {
			return fmt.Sprintf("Incidents rose from none in %s to %d in %s.", from, t.CurrentCount, to)
		}
		return fmt.Sprintf("Incidents increased by %s, from %d in %s to %d in %s.", pct(t.ChangePercent), t.PreviousCount, from, t.CurrentCount, to)
	case types.TrendDecreasing:
		return fmt.Sprintf("Incidents decreased by %s, from %d in %s to %d in %s.", pct(-t.ChangePercent), t.PreviousCount, from, t.CurrentCount, to)
	default:
		return fmt.Sprintf("Incidents held steady at %d in both %s and %s.", t.CurrentCount, from, to)
	}
}

func (g *Generator) leading(ranked []types.RankedCount) []types.RankedCount {
	if g.topN > 0 && len(ranked) > g.topN {
		return ranked[:g.topN]
	}
	return ranked
}

func (g *Generator) rootCauses(agg types.AggregationResult) []layout.Block {
	items := []string{}
	for _, rc := range g.leading(agg.TopTypes) {
		items = append(items, fmt.Sprintf("%s (%d): %s", rc.Label, rc.Count, factorFor(rc.Label)))
	}
	if agg.Hotspot != types.HotspotNone {
		items = append(items, fmt.Sprintf("%s accounts for %s of incidents, indicating a concentration of risk in that area",
			agg.Hotspot, pct(agg.TopMunicipalities[0].Percent)))
	}
	if agg.PeakTimeOfDay != types.HotspotNone {
		items = append(items, fmt.Sprintf("Incidents concentrate in the %s", agg.PeakTimeOfDay))
	}
	return []layout.Block{
		layout.Paragraph{Text: "The leading categories and their likely contributing factors:"},
		layout.BulletList{Items: items},
	}
}

func (g *Generator) recommendations(agg types.AggregationResult) []layout.Block {
	items := []string{}
	for _, rc := range g.leading(agg.TopTypes) {
		items = append(items, recommendationFor(rc.Label))
	}
	if agg.Hotspot != types.HotspotNone {
		items = append(items, "Prioritize patrol deployment and visibility in "+agg.Hotspot)
	}
	if agg.PeakTimeOfDay != types.HotspotNone {
		items = append(items, fmt.Sprintf("Schedule additional patrol shifts in the %s", agg.PeakTimeOfDay))
	}
	return []layout.Block{layout.BulletList{Items: items}}
}

func (g *Generator) riskForecast(agg types.AggregationResult) []layout.Block {
	var forecast string
	if t := agg.Trend; t.Direction == types.TrendInsufficient {
		forecast = "There is not enough monthly data to project next month's volume."
	} else {
		projected := max(0, t.CurrentCount+(t.CurrentCount-t.PreviousCount))
		forecast = fmt.Sprintf("If the change from %s to %s continues, about %d incidents can be expected next month.",
			monthLabel(t.PreviousMonth), monthLabel(t.CurrentMonth), projected)
	}
	blocks := []layout.Block{layout.Paragraph{Text: forecast}}

	if areas := g.leading(agg.TopMunicipalities); len(areas) > 0 {
		rows := make([][]string, 0, len(areas))
		for _, rc := range areas {
			rows = append(rows, []string{rc.Label, strconv.Itoa(rc.Count), pct(rc.Percent), riskLevel(rc.Percent)})
		}
		blocks = append(blocks, layout.Table{
			Header:       []string{"Municipality", "Incidents", "Share", "Risk Level"},
			Rows:         rows,
			ColumnWidths: []float64{3, 1, 1, 1},
		})
	}

	items := []string{}
	for _, rc := range g.leading(agg.TopTypes) {
		items = append(items, fmt.Sprintf("%s: %s risk (%s of incidents)", rc.Label, riskLevel(rc.Percent), pct(rc.Percent)))
	}
	return append(blocks, layout.BulletList{Items: items})
}
