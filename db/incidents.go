package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-patrol/logger"
	"go-patrol/types"
)

const (
	incidentsCollection = "incidents"
	reportsCollection   = "reports"
)

// ErrIncidentNotFound is returned by GetIncident for a missing document.
var ErrIncidentNotFound = errors.New("incident not found")

// IncidentStore reads and writes patrol incidents in Firestore.
type IncidentStore struct {
	client *firestore.Client
	log    logger.Logger
}

func NewIncidentStore(client *firestore.Client, log logger.Logger) *IncidentStore {
	return &IncidentStore{client: client, log: log}
}

// DocIDFor is the document ID a record is stored under: its existing
// document ID, or the hash of its incident ID for new records.
func DocIDFor(rec types.IncidentRecord) string {
	if rec.DocID != "" {
		return rec.DocID
	}
	if rec.ID == "" {
		return ""
	}
	return HashString(rec.ID)
}

// FetchIncidents retrieves every incident. Documents that do not decode are skipped.
func (s *IncidentStore) FetchIncidents(ctx context.Context) ([]types.IncidentRecord, error) {
	var records []types.IncidentRecord

	iter := s.client.Collection(incidentsCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating incidents collection: %w", err)
		}

		var rec types.IncidentRecord
		if err := doc.DataTo(&rec); err != nil {
			s.log.Warn("Skipping undecodable incident", logger.String("doc_id", doc.Ref.ID), logger.Error(err))
			continue
		}
		rec.DocID = doc.Ref.ID
		records = append(records, rec)
	}

	s.log.Debug("Fetched incidents", logger.Int("count", len(records)))
	return records, nil
}

// GetIncident retrieves a single incident by document ID.
func (s *IncidentStore) GetIncident(ctx context.Context, docID string) (types.IncidentRecord, error) {
	var rec types.IncidentRecord

	snap, err := s.client.Collection(incidentsCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return rec, fmt.Errorf("incident %s: %w", docID, ErrIncidentNotFound)
		}
		return rec, fmt.Errorf("error getting incident %s: %w", docID, err)
	}

	if err := snap.DataTo(&rec); err != nil {
		return rec, fmt.Errorf("error converting incident %s: %w", docID, err)
	}
	rec.DocID = snap.Ref.ID
	return rec, nil
}

// SaveIncidents writes whole records with a BulkWriter and returns how many
// were written. Records with neither a document ID nor an incident ID are skipped.
func (s *IncidentStore) SaveIncidents(ctx context.Context, records []types.IncidentRecord) (int, error) {
	col := s.client.Collection(incidentsCollection)
	return s.bulk(ctx, "save", len(records), func(bw *firestore.BulkWriter, i int) (*firestore.BulkWriterJob, error) {
		id := DocIDFor(records[i])
		if id == "" {
			return nil, nil
		}
		return bw.Set(col.Doc(id), records[i])
	})
}

// EnrichmentUpdates are the only fields a backfill touches. updatedAt is
// left alone so enrichment never changes which duplicate wins.
func EnrichmentUpdates(rec types.IncidentRecord) []firestore.Update {
	return []firestore.Update{
		{Path: "incidentType", Value: rec.IncidentType},
		{Path: "municipality", Value: rec.Municipality},
		{Path: "district", Value: rec.District},
	}
}

// UpdateEnrichment writes the classification and location fields of stored records.
func (s *IncidentStore) UpdateEnrichment(ctx context.Context, records []types.IncidentRecord) (int, error) {
	col := s.client.Collection(incidentsCollection)
	return s.bulk(ctx, "update", len(records), func(bw *firestore.BulkWriter, i int) (*firestore.BulkWriterJob, error) {
		if records[i].DocID == "" {
			return nil, nil
		}
		return bw.Update(col.Doc(records[i].DocID), EnrichmentUpdates(records[i]))
	})
}

// DeletableRefs drops refs that cannot be deleted safely: those without a
// document ID and those pointing at the document that was kept.
func DeletableRefs(refs []types.RecordRef) []types.RecordRef {
	out := make([]types.RecordRef, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.DocID == "" || ref.DocID == ref.KeptDocID || seen[ref.DocID] {
			continue
		}
		seen[ref.DocID] = true
		out = append(out, ref)
	}
	return out
}

// DeleteIncidents removes the referenced duplicates and returns how many were deleted.
func (s *IncidentStore) DeleteIncidents(ctx context.Context, refs []types.RecordRef) (int, error) {
	deletable := DeletableRefs(refs)
	if skipped := len(refs) - len(deletable); skipped > 0 {
		s.log.Warn("Skipping unsafe duplicate deletions", logger.Int("skipped", skipped))
	}

	col := s.client.Collection(incidentsCollection)
	return s.bulk(ctx, "delete", len(deletable), func(bw *firestore.BulkWriter, i int) (*firestore.BulkWriterJob, error) {
		return bw.Delete(col.Doc(deletable[i].DocID))
	})
}

// bulk enqueues n writes, ends the writer and counts the successful jobs.
// A nil job from enqueue means the item was skipped.
func (s *IncidentStore) bulk(
	ctx context.Context,
	op string,
	n int,
	enqueue func(bw *firestore.BulkWriter, i int) (*firestore.BulkWriterJob, error),
) (int, error) {
	if n == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, n)
	var errs []error

	for i := 0; i < n; i++ {
		job, err := enqueue(bw, i)
		if err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s %d: %w", op, i, err))
			continue
		}
		if job != nil {
			jobs = append(jobs, job)
		}
	}

	// End flushes every pending write and waits for the results.
	bw.End()

	done := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, err)
			continue
		}
		done++
	}

	s.log.Info("Bulk write finished",
		logger.String("op", op),
		logger.Int("enqueued", len(jobs)),
		logger.Int("succeeded", done),
	)
	if len(errs) > 0 {
		return done, fmt.Errorf("bulk %s: %d of %d writes failed: %w", op, len(errs), n, errors.Join(errs...))
	}
	return done, nil
}

// SaveReportLog records a generated report under a new UUID.
func (s *IncidentStore) SaveReportLog(ctx context.Context, entry types.ReportLog) (string, error) {
	id := uuid.NewString()
	if _, err := s.client.Collection(reportsCollection).Doc(id).Set(ctx, entry); err != nil {
		return "", fmt.Errorf("error saving report log: %w", err)
	}
	return id, nil
}
