package types

// ReportLog is the audit entry written for every generated report.
type ReportLog struct {
	ID          string `firestore:"-" json:"id"`
	Filename    string `firestore:"filename" json:"filename"`
	GeneratedAt string `firestore:"generatedAt" json:"generatedAt"`
	Period      string `firestore:"period" json:"period"`
	TotalCount  int    `firestore:"totalCount" json:"totalCount"`
	Hotspot     string `firestore:"hotspot" json:"hotspot"`
	Pages       int    `firestore:"pages" json:"pages"`
	Removed     int    `firestore:"removed" json:"removed"`
	Deleted     int    `firestore:"deleted" json:"deleted"`
	Narrative   bool   `firestore:"narrative" json:"narrative"`
}

// CleanupResult summarizes one duplicate cleanup run.
type CleanupResult struct {
	Scanned int         `json:"scanned"`
	Removed []RecordRef `json:"removed"`
	Deleted int         `json:"deleted"`
	Failed  int         `json:"failed"`
}

// BackfillResult summarizes one enrichment backfill run.
type BackfillResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
