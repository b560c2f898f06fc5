package handlers

import (
	"context"
	"io"

	"go-patrol/importer"
	"go-patrol/report"
	"go-patrol/types"
)

// PatrolService is the part of the processor the HTTP handlers drive.
type PatrolService interface {
	Report(ctx context.Context, cfg types.ReportConfig) (*report.Result, error)
	Summary(ctx context.Context, cfg types.ReportConfig) (report.Analysis, error)
	Incident(ctx context.Context, docID string) (types.IncidentRecord, error)
	Cleanup(ctx context.Context) (types.CleanupResult, error)
	Import(ctx context.Context, r io.Reader) (importer.Result, int, error)
}

// MemoDefaults fills memo lines a request leaves blank.
type MemoDefaults func(types.Memo) types.Memo
