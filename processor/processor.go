// Package processor runs the report pipeline against the incident store.
// Store I/O happens here and nowhere inside the pipeline.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-patrol/db"
	"go-patrol/dedupe"
	"go-patrol/importer"
	"go-patrol/layout"
	"go-patrol/logger"
	"go-patrol/metrics"
	"go-patrol/report"
	"go-patrol/types"
)

// IncidentSource supplies the raw incident collection.
type IncidentSource interface {
	FetchIncidents(ctx context.Context) ([]types.IncidentRecord, error)
}

// IncidentRemover deletes duplicates found by the pipeline.
type IncidentRemover interface {
	DeleteIncidents(ctx context.Context, refs []types.RecordRef) (int, error)
}

// IncidentGetter looks up one stored incident.
type IncidentGetter interface {
	GetIncident(ctx context.Context, docID string) (types.IncidentRecord, error)
}

// IncidentWriter stores imported incidents.
type IncidentWriter interface {
	SaveIncidents(ctx context.Context, records []types.IncidentRecord) (int, error)
}

// EnrichmentWriter persists classification and location fields.
type EnrichmentWriter interface {
	UpdateEnrichment(ctx context.Context, records []types.IncidentRecord) (int, error)
}

// ReportLogWriter keeps an audit trail of generated reports.
type ReportLogWriter interface {
	SaveReportLog(ctx context.Context, entry types.ReportLog) (string, error)
}

// Narrator writes an optional summary paragraph. Failures never block a report.
type Narrator interface {
	Narrate(ctx context.Context, agg types.AggregationResult, period string) (string, error)
}

// Store is everything the processor needs from persistence.
type Store interface {
	IncidentSource
	IncidentGetter
	IncidentWriter
	IncidentRemover
	EnrichmentWriter
	ReportLogWriter
}

// Processor wires the pipeline to its collaborators. Narrator and Metrics
// may be nil.
type Processor struct {
	Store     Store
	Generator *report.Generator
	Narrator  Narrator
	Metrics   *metrics.Metrics
	Log       logger.Logger
	Now       func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Report fetches incidents, builds the report and then deletes the
// duplicates it found. Deletion failures are logged and the report is still
// returned.
func (p *Processor) Report(ctx context.Context, cfg types.ReportConfig) (*report.Result, error) {
	start := p.now()
	log := p.Log.With(
		logger.String("run", uuid.NewString()),
		logger.String("period", report.PeriodOf(cfg).Label()),
	)

	// Helper function to append a formatted log message.
	var logBuilder strings.Builder
	addLog := func(format string, args ...any) {
		logBuilder.WriteString(fmt.Sprintf(format, args...))
		logBuilder.WriteString("\n")
	}
	defer func() {
		log.Debug("Report run", logger.String("trace", logBuilder.String()))
	}()

	raw, err := p.Store.FetchIncidents(ctx)
	if err != nil {
		addLog("Fetch failed: %v", err)
		p.Metrics.ObserveReport(metrics.ResultFetchFailed, p.now().Sub(start), 0)
		return nil, fmt.Errorf("failed to fetch incidents: %w", err)
	}
	addLog("Fetched %d incidents", len(raw))

	analysis := p.Generator.Analyze(raw, cfg)
	addLog("Analyzed: %d clean, %d in period, %d duplicates", analysis.Stats.Clean, analysis.Stats.InPeriod, len(analysis.Removed))

	narrative := p.narrate(ctx, analysis)
	if narrative != "" {
		addLog("Narrative added (%d chars)", len(narrative))
	}

	res, err := p.Generator.Compose(analysis, cfg, narrative)
	if err != nil {
		addLog("Compose failed: %v", err)
		result := metrics.ResultJobFailed
		if errors.Is(err, layout.ErrLayoutFailure) {
			result = metrics.ResultLayoutFailed
		}
		p.Metrics.ObserveReport(result, p.now().Sub(start), 0)
		return nil, err
	}
	addLog("Laid out %d pages as %s", len(res.Document.Pages), res.Document.Filename)

	deleted := p.removeDuplicates(ctx, res.Removed)
	addLog("Deleted %d of %d duplicates", deleted, len(res.Removed))

	p.saveLog(ctx, types.ReportLog{
		Filename:    res.Document.Filename,
		GeneratedAt: start.UTC().Format(time.RFC3339),
		Period:      analysis.Period.Label(),
		TotalCount:  res.Aggregation.TotalCount,
		Hotspot:     res.Aggregation.Hotspot,
		Pages:       len(res.Document.Pages),
		Removed:     len(res.Removed),
		Deleted:     deleted,
		Narrative:   narrative != "",
	})

	outcome := metrics.ResultOK
	if deleted < len(db.DeletableRefs(res.Removed)) {
		outcome = metrics.ResultPartial
	}
	p.Metrics.ObserveReport(outcome, p.now().Sub(start), len(res.Document.Pages))

	log.Info("Report generated",
		logger.String("filename", res.Document.Filename),
		logger.Bool("narrative", narrative != ""),
		logger.Int("total", res.Aggregation.TotalCount),
		logger.Int("pages", len(res.Document.Pages)),
		logger.Int("duplicates_deleted", deleted),
		logger.Duration("took", p.now().Sub(start)),
	)
	return res, nil
}

// Summary fetches incidents and returns the analysis behind a report
// without laying it out or touching the store.
func (p *Processor) Summary(ctx context.Context, cfg types.ReportConfig) (report.Analysis, error) {
	raw, err := p.Store.FetchIncidents(ctx)
	if err != nil {
		return report.Analysis{}, fmt.Errorf("failed to fetch incidents: %w", err)
	}
	return p.Generator.Analyze(raw, cfg), nil
}

// Incident returns one stored incident with the classification and location
// the pipeline would assign it. Nothing is written back.
func (p *Processor) Incident(ctx context.Context, docID string) (types.IncidentRecord, error) {
	rec, err := p.Store.GetIncident(ctx, docID)
	if err != nil {
		return types.IncidentRecord{}, err
	}
	enriched, _ := p.Generator.Enrich(rec)
	return enriched, nil
}

// Import parses a workbook and saves its rows. Rejected rows are returned in
// the result and do not fail the import.
func (p *Processor) Import(ctx context.Context, r io.Reader) (importer.Result, int, error) {
	parsed, err := importer.ParseWorkbook(r, p.now())
	if err != nil {
		return importer.Result{}, 0, err
	}
	p.Metrics.AddImportRows(metrics.ResultRowRejected, len(parsed.Errors))
	if len(parsed.Records) == 0 {
		return parsed, 0, nil
	}

	saved, err := p.Store.SaveIncidents(ctx, parsed.Records)
	p.Metrics.AddImportRows(metrics.ResultRowImported, saved)
	if err != nil {
		return parsed, saved, fmt.Errorf("failed to save incidents: %w", err)
	}

	p.Log.Info("Workbook imported",
		logger.Int("saved", saved),
		logger.Int("rejected", len(parsed.Errors)),
	)
	return parsed, saved, nil
}

func (p *Processor) narrate(ctx context.Context, a report.Analysis) string {
	if p.Narrator == nil || a.Aggregation.TotalCount == 0 {
		return ""
	}
	text, err := p.Narrator.Narrate(ctx, a.Aggregation, a.Period.Label())
	if err != nil {
		p.Log.Warn("Narrative skipped", logger.Error(err))
		p.Metrics.ObserveNarrative(metrics.ResultNarrativeFail)
		return ""
	}
	p.Metrics.ObserveNarrative(metrics.ResultOK)
	return text
}

// removeDuplicates asks the store to delete refs and reports how many went.
func (p *Processor) removeDuplicates(ctx context.Context, refs []types.RecordRef) int {
	if len(refs) == 0 {
		return 0
	}
	for _, reason := range []string{types.ReasonIdentityDuplicate, types.ReasonContentDuplicate} {
		p.Metrics.AddDuplicates(reason, countReason(refs, reason))
	}

	deleted, err := p.Store.DeleteIncidents(ctx, refs)
	if err != nil {
		p.Log.Error("Duplicate deletion failed",
			logger.Int("requested", len(refs)),
			logger.Int("deleted", deleted),
			logger.Error(err),
		)
		p.Metrics.AddDeletionFailures(len(db.DeletableRefs(refs)) - deleted)
	}
	return deleted
}

func (p *Processor) saveLog(ctx context.Context, entry types.ReportLog) {
	if _, err := p.Store.SaveReportLog(ctx, entry); err != nil {
		p.Log.Warn("Report log not saved", logger.String("filename", entry.Filename), logger.Error(err))
	}
}

// Cleanup deletes duplicates without producing a report.
func (p *Processor) Cleanup(ctx context.Context) (types.CleanupResult, error) {
	raw, err := p.Store.FetchIncidents(ctx)
	if err != nil {
		return types.CleanupResult{}, fmt.Errorf("failed to fetch incidents: %w", err)
	}

	found := dedupe.Dedupe(raw)
	res := types.CleanupResult{Scanned: len(raw), Removed: found.Removed}
	res.Deleted = p.removeDuplicates(ctx, found.Removed)
	res.Failed = len(db.DeletableRefs(found.Removed)) - res.Deleted

	p.Log.Info("Duplicate cleanup finished",
		logger.Int("scanned", res.Scanned),
		logger.Int("removed", len(res.Removed)),
		logger.Int("deleted", res.Deleted),
	)
	return res, nil
}

// Backfill classifies and resolves stored records whose enrichment is
// missing or stale and writes the new fields back.
func (p *Processor) Backfill(ctx context.Context) (types.BackfillResult, error) {
	raw, err := p.Store.FetchIncidents(ctx)
	if err != nil {
		return types.BackfillResult{}, fmt.Errorf("failed to fetch incidents: %w", err)
	}

	var changed []types.IncidentRecord
	for _, rec := range raw {
		if report.IsPlaceholder(rec.Description) {
			continue
		}
		enriched, _ := p.Generator.Enrich(rec)
		if enriched.IncidentType != rec.IncidentType ||
			enriched.Municipality != rec.Municipality ||
			enriched.District != rec.District {
			changed = append(changed, enriched)
		}
	}

	res := types.BackfillResult{Scanned: len(raw)}
	if len(changed) == 0 {
		return res, nil
	}

	res.Updated, err = p.Store.UpdateEnrichment(ctx, changed)
	res.Failed = len(changed) - res.Updated
	if err != nil {
		return res, fmt.Errorf("failed to update enrichment: %w", err)
	}

	p.Log.Info("Enrichment backfill finished",
		logger.Int("scanned", res.Scanned),
		logger.Int("updated", res.Updated),
	)
	return res, nil
}

func countReason(refs []types.RecordRef, reason string) int {
	n := 0
	for _, r := range refs {
		if r.Reason == reason {
			n++
		}
	}
	return n
}
