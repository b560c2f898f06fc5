// Package report turns raw incident records into a paginated crime analysis report.
package report

import (
	"strings"
	"time"

	"go-patrol/aggregate"
	"go-patrol/classifier"
	"go-patrol/dedupe"
	"go-patrol/gazetteer"
	"go-patrol/layout"
	"go-patrol/location"
	"go-patrol/types"
)

// placeholders are descriptions that carry no information.
var placeholders = map[string]bool{
	"":     true,
	"-":    true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"null": true,
	"tbd":  true,
	"...":  true,
}

// IsPlaceholder reports whether a description is empty or a stand-in.
func IsPlaceholder(description string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(description))]
}

// Stats describes what the cleaning steps did.
type Stats struct {
	Received           int `json:"received"`
	Placeholders       int `json:"placeholders"`
	Reclassified       int `json:"reclassified"`
	Unresolved         int `json:"unresolved"`
	IdentityDuplicates int `json:"identityDuplicates"`
	ContentDuplicates  int `json:"contentDuplicates"`
	Clean              int `json:"clean"`
	InPeriod           int `json:"inPeriod"`
}

// Analysis is everything computed before composition. It involves no I/O.
type Analysis struct {
	Clean       []types.IncidentRecord  `json:"clean"`
	Removed     []types.RecordRef       `json:"removed"`
	InPeriod    []types.IncidentRecord  `json:"-"`
	Aggregation types.AggregationResult `json:"aggregation"`
	Stats       Stats                   `json:"stats"`
	Period      Period                  `json:"-"`
}

// Result is a finished report.
type Result struct {
	Clean       []types.IncidentRecord
	Removed     []types.RecordRef
	Aggregation types.AggregationResult
	Stats       Stats
	Document    layout.Document
}

// Generator is stateless between calls and safe for concurrent use.
type Generator struct {
	classifier *classifier.Classifier
	resolver   *location.Resolver
	pageConfig layout.PageConfig
	measurer   layout.Measurer
	topN       int
	now        func() time.Time
}

type Option func(*Generator)

func WithClassifier(c *classifier.Classifier) Option {
	return func(g *Generator) { g.classifier = c }
}

func WithResolver(r *location.Resolver) Option {
	return func(g *Generator) { g.resolver = r }
}

func WithPageConfig(cfg layout.PageConfig) Option {
	return func(g *Generator) { g.pageConfig = cfg }
}

// WithMeasurer sets the text measurer used for wrapping. The measurer must
// be safe for concurrent use if the generator is shared.
func WithMeasurer(m layout.Measurer) Option {
	return func(g *Generator) { g.measurer = m }
}

// WithTopN limits the rankings listed in the summary and forecast sections.
func WithTopN(n int) Option {
	return func(g *Generator) { g.topN = n }
}

// WithClock replaces time.Now for the memo date and the filename year.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		pageConfig: layout.DefaultPageConfig(),
		measurer:   layout.FixedPitch{},
		topN:       5,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.classifier == nil {
		g.classifier = classifier.Default()
	}
	if g.resolver == nil {
		g.resolver = location.New(gazetteer.Default())
	}
	return g
}

// Generate runs Analyze and Compose with no narrative.
func (g *Generator) Generate(raw []types.IncidentRecord, cfg types.ReportConfig) (*Result, error) {
	return g.Compose(g.Analyze(raw, cfg), cfg, "")
}

// Analyze cleans, enriches, deduplicates, filters and aggregates. The input
// slice is not modified. It never fails.
func (g *Generator) Analyze(raw []types.IncidentRecord, cfg types.ReportConfig) Analysis {
	stats := Stats{Received: len(raw)}

	enriched := make([]types.IncidentRecord, 0, len(raw))
	for _, rec := range raw {
		if IsPlaceholder(rec.Description) {
			stats.Placeholders++
			continue
		}
		var reclassified bool
		rec, reclassified = g.Enrich(rec)
		if reclassified {
			stats.Reclassified++
		}
		if rec.Municipality == g.resolver.Gazetteer().Fallback().Municipality {
			stats.Unresolved++
		}
		enriched = append(enriched, rec)
	}

	deduped := dedupe.Dedupe(enriched)
	for _, ref := range deduped.Removed {
		switch ref.Reason {
		case types.ReasonIdentityDuplicate:
			stats.IdentityDuplicates++
		case types.ReasonContentDuplicate:
			stats.ContentDuplicates++
		}
	}
	stats.Clean = len(deduped.Clean)

	inPeriod := aggregate.FilterPeriod(deduped.Clean, cfg.SelectedMonth, cfg.SelectedYear)
	stats.InPeriod = len(inPeriod)

	return Analysis{
		Clean:       deduped.Clean,
		Removed:     deduped.Removed,
		InPeriod:    inPeriod,
		Aggregation: aggregate.Aggregate(inPeriod, aggregate.Options{Resolver: g.resolver}),
		Stats:       stats,
		Period:      PeriodOf(cfg),
	}
}

// Enrich returns a copy of rec with a label from the classifier's set and a
// gazetteer municipality. Labels outside the set, and Other labels, are
// recomputed from the current description. The bool reports a label change.
func (g *Generator) Enrich(rec types.IncidentRecord) (types.IncidentRecord, bool) {
	before := rec.IncidentType
	base := classifier.BaseLabel(rec.IncidentType)
	if base == "" || base == classifier.Other || !g.classifier.IsKnown(base) {
		rec.IncidentType = g.classifier.ClassifyRecord(rec)
	}

	res := g.resolver.ResolveRecord(rec)
	rec.Municipality = res.Municipality
	rec.District = res.District

	return rec, rec.IncidentType != before
}

// Compose builds the document from a finished analysis. A non-empty
// narrative is added to the summary section. Layout errors are the only
// failure and no partial document is returned with them.
func (g *Generator) Compose(a Analysis, cfg types.ReportConfig, narrative string) (*Result, error) {
	now := g.now()
	sections := g.sections(a, cfg, narrative, now)

	engine := layout.NewEngine(g.pageConfig, g.measurer)
	pages, err := engine.Layout(sections)
	if err != nil {
		return nil, err
	}

	return &Result{
		Clean:       a.Clean,
		Removed:     a.Removed,
		Aggregation: a.Aggregation,
		Stats:       a.Stats,
		Document: layout.Document{
			Filename: Filename(a.Period, now),
			Config:   g.pageConfig,
			Pages:    pages,
		},
	}, nil
}
