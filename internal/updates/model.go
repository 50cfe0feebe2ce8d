package updates

import (
	"time"

	"dotupdate-backend/internal/airtable"
)

// Outcome labels for the processed-update log.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// UpdateLog records one terminal outcome of a processed request.
type UpdateLog struct {
	ID           string    `json:"id"`
	JobNumber    string    `json:"jobNumber"`
	Outcome      string    `json:"outcome"`
	UpdateText   string    `json:"updateText,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Result is everything the handler needs to assemble a success response.
type Result struct {
	Project        airtable.Project
	Analysis       AnalysisResult
	UpdateDue      time.Time
	Patch          airtable.ProjectPatch
	UpdateCreated  bool
	ProjectUpdated bool
}
