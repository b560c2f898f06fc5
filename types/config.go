package types

// AllPeriods is the month/year sentinel meaning "no filter".
const AllPeriods = "all"

// SectionToggles switches the six numbered report sections on or off.
type SectionToggles struct {
	DataCleaning          bool `json:"dataCleaning" yaml:"data_cleaning"`
	MunicipalityBreakdown bool `json:"municipalityBreakdown" yaml:"municipality_breakdown"`
	TrendAnalysis         bool `json:"trendAnalysis" yaml:"trend_analysis"`
	RootCause             bool `json:"rootCause" yaml:"root_cause"`
	Recommendations       bool `json:"recommendations" yaml:"recommendations"`
	RiskForecast          bool `json:"riskForecast" yaml:"risk_forecast"`
}

// AllSections turns every section on.
func AllSections() SectionToggles {
	return SectionToggles{
		DataCleaning:          true,
		MunicipalityBreakdown: true,
		TrendAnalysis:         true,
		RootCause:             true,
		Recommendations:       true,
		RiskForecast:          true,
	}
}

// Memo holds the FOR/FROM/DATE/SUBJECT header lines.
type Memo struct {
	For     string `json:"for" yaml:"for"`
	From    string `json:"from" yaml:"from"`
	Date    string `json:"date" yaml:"date"`
	Subject string `json:"subject" yaml:"subject"`
}

// ReportConfig is the caller's request for one report. It is passed by value and never mutated.
type ReportConfig struct {
	SelectedMonth   string         `json:"selectedMonth" yaml:"selected_month"` // "1".."12", month name, or "all"
	SelectedYear    string         `json:"selectedYear" yaml:"selected_year"`   // "2024" or "all"
	IncludeSections SectionToggles `json:"includeSections" yaml:"include_sections"`
	CustomNotes     string         `json:"customNotes" yaml:"custom_notes"`
	Memo            Memo           `json:"memo" yaml:"memo"`
}
