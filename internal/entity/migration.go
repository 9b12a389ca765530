package entity

type OutcomeStatus string

const (
	OutcomeFixed   OutcomeStatus = "fixed"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeError   OutcomeStatus = "error"
)

// MigrationOutcome is the result of migrating one legacy record.
type MigrationOutcome struct {
	ID     int64         `json:"id"`
	Status OutcomeStatus `json:"status"`
	NewURL string        `json:"newUrl,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// MigrationSummary aggregates one best-effort migration run.
type MigrationSummary struct {
	Total   int                `json:"total"`
	Fixed   int                `json:"fixed"`
	Failed  int                `json:"failed"`
	Results []MigrationOutcome `json:"results"`
}

// MigrationStatus is the read-only probe returned without performing writes.
type MigrationStatus struct {
	Status          string `json:"status"`
	Base64Entries   int    `json:"base64_entries"`
	FilePathEntries int    `json:"file_path_entries"`
	NeedsMigration  bool   `json:"needs_migration"`
}
