// Package dedupe finds duplicate incident records without touching the store.
package dedupe

import "go-patrol/types"

// Result is the cleaned collection plus the records the caller should delete.
type Result struct {
	Clean   []types.IncidentRecord `json:"clean"`
	Removed []types.RecordRef      `json:"removed"`
}

// Dedupe applies the identity pass and then the content pass.
// The input slice is not modified. Dedupe(Dedupe(x).Clean).Clean equals Dedupe(x).Clean.
func Dedupe(records []types.IncidentRecord) Result {
	clean, removedByID := ByIdentity(records)
	clean, removedByContent := ByContent(clean)

	return Result{
		Clean:   clean,
		Removed: append(removedByID, removedByContent...),
	}
}

// ByIdentity keeps one record per ID: the one modified last, the first one on a tie.
// The winner takes the slot where its ID first appeared. Records without an ID pass through.
func ByIdentity(records []types.IncidentRecord) ([]types.IncidentRecord, []types.RecordRef) {
	clean := make([]types.IncidentRecord, 0, len(records))
	removed := []types.RecordRef{}
	slot := make(map[string]int, len(records))

	for _, rec := range records {
		if rec.ID == "" {
			clean = append(clean, rec)
			continue
		}
		i, seen := slot[rec.ID]
		if !seen {
			slot[rec.ID] = len(clean)
			clean = append(clean, rec)
			continue
		}

		kept := clean[i]
		if rec.LastModified() > kept.LastModified() {
			clean[i] = rec
			removed = append(removed, ref(kept, rec, types.ReasonIdentityDuplicate))
		} else {
			removed = append(removed, ref(rec, kept, types.ReasonIdentityDuplicate))
		}
	}
	return clean, removed
}

type contentKey struct {
	incidentType string
	date         string
	location     string
}

// ByContent keeps the first record for each (type, date, location) triple.
// A record missing its date or location is never treated as a duplicate.
func ByContent(records []types.IncidentRecord) ([]types.IncidentRecord, []types.RecordRef) {
	clean := make([]types.IncidentRecord, 0, len(records))
	removed := []types.RecordRef{}
	first := make(map[contentKey]types.IncidentRecord, len(records))

	for _, rec := range records {
		if rec.Date == "" || rec.Location == "" {
			clean = append(clean, rec)
			continue
		}
		key := contentKey{rec.IncidentType, rec.Date, rec.Location}
		if kept, ok := first[key]; ok {
			removed = append(removed, ref(rec, kept, types.ReasonContentDuplicate))
			continue
		}
		first[key] = rec
		clean = append(clean, rec)
	}
	return clean, removed
}

func ref(dropped, kept types.IncidentRecord, reason string) types.RecordRef {
	return types.RecordRef{
		ID:        dropped.ID,
		DocID:     dropped.DocID,
		Reason:    reason,
		KeptDocID: kept.DocID,
	}
}
