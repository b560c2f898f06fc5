// Package aggregate computes the counts, rankings and trend behind a report.
package aggregate

import (
	"math"
	"sort"

	"go-patrol/classifier"
	"go-patrol/gazetteer"
	"go-patrol/location"
	"go-patrol/types"
)

const unknownLabel = "Unknown"

// Options tunes Aggregate. The zero value is usable.
type Options struct {
	// Resolver supplies the municipality candidates. Defaults to the embedded gazetteer.
	Resolver *location.Resolver
	// TopN caps the ranking slices; zero keeps every label.
	TopN int
}

// tally counts labels and remembers the order they were first seen in.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(label string) {
	if _, ok := t.counts[label]; !ok {
		t.order = append(t.order, label)
	}
	t.counts[label]++
}

// Aggregate never fails. Records with an unknown date still count toward the
// total and the type and location buckets.
func Aggregate(records []types.IncidentRecord, opts Options) types.AggregationResult {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = location.New(gazetteer.Default())
	}
	gaz := resolver.Gazetteer()
	areas := resolver.Areas()

	byType := newTally()
	byMunicipality := newTally()
	byDistrict := newTally()
	byMonth := newTally()
	byStatus := newTally()
	byPriority := newTally()
	byTimeOfDay := newTally()
	unknownDates := 0

	for _, rec := range records {
		byType.add(typeLabel(rec.IncidentType))

		detected := resolver.DetectAreas(rec.Location, areas)
		if len(detected) == 0 {
			if e, ok := gaz.Lookup(rec.Municipality); ok {
				detected = []string{e.Municipality}
			}
		}
		for _, area := range detected {
			byMunicipality.add(area)
		}

		if gaz.IsDistrict(rec.District) {
			byDistrict.add(rec.District)
		}

		// Undated records stay out of the month and time-of-day buckets.
		if t, ok := ParseDate(rec.Date); ok {
			byMonth.add(MonthKey(t))
			if bucket, ok := TimeOfDay(rec.Time); ok {
				byTimeOfDay.add(bucket)
			}
		} else {
			unknownDates++
		}

		byStatus.add(orUnknown(rec.Status))
		byPriority.add(orUnknown(string(rec.Priority)))
	}

	total := len(records)
	res := types.AggregationResult{
		TotalCount:           total,
		CountsByType:         byType.counts,
		CountsByMunicipality: byMunicipality.counts,
		CountsByDistrict:     byDistrict.counts,
		CountsByMonth:        byMonth.counts,
		CountsByStatus:       byStatus.counts,
		CountsByPriority:     byPriority.counts,
		CountsByTimeOfDay:    byTimeOfDay.counts,
		TopTypes:             Rank(byType.counts, byType.order, total, opts.TopN),
		TopMunicipalities:    Rank(byMunicipality.counts, byMunicipality.order, total, opts.TopN),
		TopDistricts:         Rank(byDistrict.counts, byDistrict.order, total, opts.TopN),
		Months:               sortedMonths(byMonth.order),
		Hotspot:              types.HotspotNone,
		PeakTimeOfDay:        types.HotspotNone,
		UnknownDateCount:     unknownDates,
	}

	if len(res.TopMunicipalities) > 0 {
		res.Hotspot = res.TopMunicipalities[0].Label
	}
	peak := 0
	for _, bucket := range []string{types.Morning, types.Afternoon, types.Evening} {
		if n := byTimeOfDay.counts[bucket]; n > peak {
			peak = n
			res.PeakTimeOfDay = bucket
		}
	}
	res.Trend = trend(res.Months, byMonth.counts)

	return res
}

// Rank orders labels by descending count. Equal counts keep the order given
// in firstSeen. A positive limit truncates the result.
func Rank(counts map[string]int, firstSeen []string, total, limit int) []types.RankedCount {
	ranked := make([]types.RankedCount, 0, len(firstSeen))
	for _, label := range firstSeen {
		ranked = append(ranked, types.RankedCount{
			Label:   label,
			Count:   counts[label],
			Percent: Percent(counts[label], total),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Percent is count/total*100 rounded to one decimal, or 0 when total is 0.
func Percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

func trend(months []string, counts map[string]int) types.Trend {
	if len(months) < 2 {
		t := types.Trend{Direction: types.TrendInsufficient}
		if len(months) == 1 {
			t.CurrentMonth = months[0]
			t.CurrentCount = counts[months[0]]
		}
		return t
	}

	prev, cur := months[len(months)-2], months[len(months)-1]
	t := types.Trend{
		PreviousMonth: prev,
		CurrentMonth:  cur,
		PreviousCount: counts[prev],
		CurrentCount:  counts[cur],
	}
	switch {
	case t.CurrentCount > t.PreviousCount:
		t.Direction = types.TrendIncreasing
	case t.CurrentCount < t.PreviousCount:
		t.Direction = types.TrendDecreasing
	default:
		t.Direction = types.TrendStable
	}
	if t.PreviousCount > 0 {
		change := float64(t.CurrentCount-t.PreviousCount) / float64(t.PreviousCount) * 100
		t.ChangePercent = math.Round(change*10) / 10
	}
	return t
}

func sortedMonths(keys []string) []string {
	months := append([]string{}, keys...)
	sort.Strings(months)
	return months
}

func typeLabel(label string) string {
	if label == "" {
		return classifier.Other
	}
	return classifier.BaseLabel(label)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}
