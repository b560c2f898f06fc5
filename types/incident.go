package types

// Status values the dashboard writes; anything else is kept as free text.
const (
	StatusActive             = "Active"
	StatusCompleted          = "Completed"
	StatusUnderInvestigation = "Under Investigation"
)

type Priority string

const (
	Low      Priority = "Low"
	Medium   Priority = "Medium"
	High     Priority = "High"
	Critical Priority = "Critical"
)

// IncidentRecord is a patrol incident as stored in Firestore.
type IncidentRecord struct {
	DocID             string   `firestore:"-" json:"docId,omitempty"` // Firestore document ID, not a stored field
	ID                string   `firestore:"id" json:"id"`
	Description       string   `firestore:"description" json:"description"`
	Location          string   `firestore:"location" json:"location"`
	IncidentType      string   `firestore:"incidentType" json:"incidentType"`
	District          string   `firestore:"district" json:"district"`
	Municipality      string   `firestore:"municipality" json:"municipality"`
	Date              string   `firestore:"date" json:"date"`
	Time              string   `firestore:"time" json:"time"`
	Status            string   `firestore:"status" json:"status"`
	ActionType        string   `firestore:"actionType" json:"actionType"`
	ActionDescription string   `firestore:"actionDescription" json:"actionDescription"`
	AssignedOfficer   string   `firestore:"assignedOfficer" json:"assignedOfficer"`
	Priority          Priority `firestore:"priority" json:"priority"`
	CreatedAt         string   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt         string   `firestore:"updatedAt" json:"updatedAt"`
}

// LastModified is the timestamp used to pick the newer of two records.
func (r IncidentRecord) LastModified() string {
	if r.UpdatedAt != "" {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// Removal reasons reported by the deduplicator.
const (
	ReasonIdentityDuplicate = "identity_duplicate"
	ReasonContentDuplicate  = "content_duplicate"
)

// RecordRef points at a record the caller should delete from the store.
type RecordRef struct {
	ID        string `json:"id"`
	DocID     string `json:"docId,omitempty"`
	Reason    string `json:"reason"`
	KeptDocID string `json:"keptDocId,omitempty"`
}
