package types

// HotspotNone is reported when there is nothing to rank.
const HotspotNone = "none"

// Time-of-day buckets.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
)

// Trend directions between the two most recent months.
const (
	TrendIncreasing   = "increasing"
	TrendDecreasing   = "decreasing"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"
)

// RankedCount is one row of a ranking.
type RankedCount struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type Trend struct {
	Direction     string  `json:"direction"`
	PreviousMonth string  `json:"previousMonth,omitempty"`
	CurrentMonth  string  `json:"currentMonth,omitempty"`
	PreviousCount int     `json:"previousCount"`
	CurrentCount  int     `json:"currentCount"`
	ChangePercent float64 `json:"changePercent"`
}

// AggregationResult holds the statistics behind a report and the dashboard summary.
type AggregationResult struct {
	TotalCount           int            `json:"totalCount"`
	CountsByType         map[string]int `json:"countsByType"`
	CountsByMunicipality map[string]int `json:"countsByMunicipality"`
	CountsByDistrict     map[string]int `json:"countsByDistrict"`
	CountsByMonth        map[string]int `json:"countsByMonth"`
	CountsByStatus       map[string]int `json:"countsByStatus"`
	CountsByPriority     map[string]int `json:"countsByPriority"`
	CountsByTimeOfDay    map[string]int `json:"countsByTimeOfDay"`

	TopTypes          []RankedCount `json:"topTypes"`
	TopMunicipalities []RankedCount `json:"topMunicipalities"`
	TopDistricts      []RankedCount `json:"topDistricts"`

	Months           []string `json:"months"` // chronological YYYY-MM keys
	Hotspot          string   `json:"hotspot"`
	PeakTimeOfDay    string   `json:"peakTimeOfDay"`
	Trend            Trend    `json:"trend"`
	UnknownDateCount int      `json:"unknownDateCount"`
}
