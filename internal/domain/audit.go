package domain

import "time"

// Audit actions recorded by mutation operations.
const (
	AuditActionImport        = "import"
	AuditActionLinkRebuild   = "link_rebuild"
	AuditActionTagMerge      = "tag_merge"
	AuditActionCleanup       = "cleanup"
	AuditActionRemoteImport  = "remote_import"
	AuditActionMediaAnalysis = "media_analysis"
	AuditActionRestore       = "restore"
)

// AuditEntry records a mutation of the imported dataset.
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Affected  int       `json:"affected"` // Number of records touched
	CreatedAt time.Time `json:"created_at"`
}

// Import job states.
const (
	JobStatePending  = "pending"
	JobStateRunning  = "running"
	JobStateComplete = "complete"
	JobStateFailed   = "failed"
)

// ImportJob tracks one WXR import attempt. A failed parse or map is terminal
// for the attempt; jobs are never retried automatically.
type ImportJob struct {
	ID          string     `json:"id"`
	State       string     `json:"state"`
	Source      string     `json:"source,omitempty"` // Filename or "upload"
	Error       string     `json:"error,omitempty"`
	Posts       int        `json:"posts"`
	Attachments int        `json:"attachments"`
	Comments    int        `json:"comments"`
	MetaRows    int        `json:"meta_rows"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
