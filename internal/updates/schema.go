package updates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dotupdate-backend/internal/airtable"
)

// Confidence levels the model may report.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// stageUnknown is the sentinel the model uses for "could not determine";
// it never produces a project patch.
const stageUnknown = "Unknown"

// ChatMessage is the optional subject/body pair for downstream notification.
type ChatMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AnalysisResult is the canonical decoded shape of the model's reply. Nil
// pointer fields mean "no change". A non-empty ErrorCode marks a business
// rejection and exempts the rest of the shape from validation.
type AnalysisResult struct {
	UpdateSummary  string       `json:"updateSummary"`
	UpdateDue      string       `json:"updateDue,omitempty"`
	Stage          *string      `json:"stage"`
	Status         *string      `json:"status"`
	WithClient     *bool        `json:"withClient"`
	LiveDate       *string      `json:"liveDate,omitempty"`
	HasBlocker     bool         `json:"hasBlocker"`
	BlockerNote    string       `json:"blockerNote,omitempty"`
	Confidence     string       `json:"confidence"`
	ConfidenceNote string       `json:"confidenceNote,omitempty"`
	ChatMessage    *ChatMessage `json:"chatMessage,omitempty"`
	ErrorCode      string       `json:"error,omitempty"`
	ErrorMessage   string       `json:"message,omitempty"`
}

// IsRejection reports whether the model refused to produce an update.
func (r AnalysisResult) IsRejection() bool {
	return r.ErrorCode != ""
}

// decodeAnalysis parses sanitized model output into an AnalysisResult and
// validates it. Unrecognized shapes are rejected, not defaulted.
func decodeAnalysis(raw string) (AnalysisResult, error) {
	var result AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return AnalysisResult{}, &MalformedOutputError{Raw: raw, Err: err}
	}
	if err := result.validate(); err != nil {
		return AnalysisResult{}, &MalformedOutputError{Raw: raw, Err: err}
	}
	return result, nil
}

func (r AnalysisResult) validate() error {
	if r.IsRejection() {
		return nil
	}
	switch r.Confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		return fmt.Errorf("unrecognized confidence %q", r.Confidence)
	}
	if r.UpdateDue != "" {
		if _, err := time.Parse(airtable.DateOnly, r.UpdateDue); err != nil {
			return fmt.Errorf("updateDue: %w", err)
		}
	}
	if r.LiveDate != nil && *r.LiveDate != "" {
		if _, err := time.Parse(airtable.DateOnly, *r.LiveDate); err != nil {
			return fmt.Errorf("liveDate: %w", err)
		}
	}
	return nil
}

// computePatch reconciles proposed field values against the current project
// state. Unchanged values and the "Unknown" sentinel are no-ops and stay out
// of the patch payload.
func computePatch(project airtable.Project, result AnalysisResult) airtable.ProjectPatch {
	var patch airtable.ProjectPatch

	if v := proposedLabel(result.Stage, project.Stage); v != nil {
		patch.Stage = v
	}
	if v := proposedLabel(result.Status, project.Status); v != nil {
		patch.Status = v
	}
	if result.WithClient != nil && *result.WithClient != project.WithClient {
		patch.WithClient = result.WithClient
	}
	if result.LiveDate != nil && strings.TrimSpace(*result.LiveDate) != "" {
		patch.LiveDate = result.LiveDate
	}
	return patch
}

func proposedLabel(proposed *string, current string) *string {
	if proposed == nil {
		return nil
	}
	v := strings.TrimSpace(*proposed)
	if v == "" || strings.EqualFold(v, stageUnknown) || v == current {
		return nil
	}
	return &v
}
