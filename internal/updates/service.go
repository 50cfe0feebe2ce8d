package updates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dotupdate-backend/internal/airtable"
	"dotupdate-backend/internal/llm"
	"dotupdate-backend/internal/shared/metrics"
	"dotupdate-backend/internal/shared/telemetry"
	"dotupdate-backend/internal/shared/util"
)

// Datastore is the slice of the Airtable client the service depends on.
type Datastore interface {
	ProjectByJobNumber(ctx context.Context, jobNumber string) (airtable.Project, error)
	CreateUpdate(ctx context.Context, projectRecordID, text string, due time.Time) error
	PatchProject(ctx context.Context, projectRecordID string, patch airtable.ProjectPatch) error
}

// Service runs the update pipeline: lookup, analysis, reconciliation,
// persistence. One call per request, strictly sequential.
type Service struct {
	Store        Datastore
	LLM          llm.Client
	Repo         Repo
	SystemPrompt string

	now func() time.Time
}

// NewService constructs a Service.
func NewService(store Datastore, client llm.Client, repo Repo, systemPrompt string) *Service {
	return &Service{
		Store:        store,
		LLM:          client,
		Repo:         repo,
		SystemPrompt: systemPrompt,
		now:          time.Now,
	}
}

// Process handles one job update end to end. Errors are typed for the
// handler: *airtable.NotFoundError, airtable.ErrNotConfigured,
// *airtable.UpstreamError, *MalformedOutputError, *Rejection.
func (s *Service) Process(ctx context.Context, jobNumber, emailContent string) (Result, error) {
	project, err := s.Store.ProjectByJobNumber(ctx, jobNumber)
	if err != nil {
		metrics.IncUpdateFailed()
		s.logOutcome(ctx, jobNumber, OutcomeFailed, "", err.Error())
		return Result{}, err
	}

	analysis, err := s.Analyze(ctx, project, emailContent)
	if err != nil {
		metrics.IncUpdateFailed()
		s.logOutcome(ctx, jobNumber, OutcomeFailed, "", err.Error())
		return Result{}, err
	}

	if analysis.IsRejection() {
		metrics.IncUpdateRejected()
		s.logOutcome(ctx, jobNumber, OutcomeRejected, "", analysis.ErrorMessage)
		return Result{Project: project, Analysis: analysis}, &Rejection{
			Code:    analysis.ErrorCode,
			Message: analysis.ErrorMessage,
		}
	}

	due := s.dueDate(analysis)

	result := Result{
		Project:   project,
		Analysis:  analysis,
		UpdateDue: due,
		Patch:     computePatch(project, analysis),
	}

	// The update write is terminal; the project patch below is best-effort.
	if strings.TrimSpace(analysis.UpdateSummary) != "" {
		if err := s.Store.CreateUpdate(ctx, project.RecordID, analysis.UpdateSummary, due); err != nil {
			metrics.IncUpdateFailed()
			s.logOutcome(ctx, jobNumber, OutcomeFailed, analysis.UpdateSummary, err.Error())
			return Result{}, err
		}
		result.UpdateCreated = true
	}

	if !result.Patch.Empty() {
		if err := s.Store.PatchProject(ctx, project.RecordID, result.Patch); err != nil {
			telemetry.Error("update.patch_failed", map[string]any{
				"job_number": jobNumber,
				"record_id":  project.RecordID,
				"error":      err.Error(),
			})
		} else {
			result.ProjectUpdated = true
		}
	}

	metrics.IncUpdateCreated()
	s.logOutcome(ctx, jobNumber, OutcomeOK, analysis.UpdateSummary, "")
	return result, nil
}

// Analyze composes the prompt context, invokes the model and decodes its
// reply. It does not persist anything.
func (s *Service) Analyze(ctx context.Context, project airtable.Project, emailContent string) (AnalysisResult, error) {
	if s.LLM == nil {
		return AnalysisResult{}, fmt.Errorf("llm client not configured")
	}

	content := s.composeContent(project, emailContent)
	raw, err := s.LLM.AnalyzeUpdate(ctx, llm.AnalyzeInput{
		SystemPrompt: s.SystemPrompt,
		Content:      content,
	})
	if err != nil {
		return AnalysisResult{}, &airtable.UpstreamError{Op: "model inference", Err: err}
	}

	return decodeAnalysis(util.StripCodeFence(raw))
}

// History returns the recent processed-update log for a job.
func (s *Service) History(ctx context.Context, jobNumber string, limit int) ([]UpdateLog, error) {
	if s.Repo == nil {
		return nil, nil
	}
	return s.Repo.ListByJob(ctx, jobNumber, limit)
}

func (s *Service) composeContent(project airtable.Project, emailContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's Date: %s\n", s.now().Format("Monday, 2 January 2006"))
	fmt.Fprintf(&b, "Job Number: %s\n", project.JobNumber)
	fmt.Fprintf(&b, "Job Name: %s\n", project.JobName)
	fmt.Fprintf(&b, "Client Name: %s\n", project.ClientName)
	fmt.Fprintf(&b, "Current Stage: %s\n", project.Stage)
	fmt.Fprintf(&b, "Current Status: %s\n", project.Status)
	fmt.Fprintf(&b, "With Client: %t\n", project.WithClient)
	if project.CurrentUpdate != "" {
		fmt.Fprintf(&b, "Previous Update: %s\n", project.CurrentUpdate)
	}
	b.WriteString("Email/Message Content:\n")
	b.WriteString(emailContent)
	return b.String()
}

// dueDate resolves the update due date: the model's value when present,
// otherwise 5 business days from today. The fallback lives here so the model
// contract, not the datastore, decides the default.
func (s *Service) dueDate(analysis AnalysisResult) time.Time {
	if analysis.UpdateDue != "" {
		if due, err := time.Parse(airtable.DateOnly, analysis.UpdateDue); err == nil {
			return due
		}
	}
	return util.AddBusinessDays(s.now(), 5)
}

// logOutcome records a terminal outcome, best-effort.
func (s *Service) logOutcome(ctx context.Context, jobNumber, outcome, text, errMsg string) {
	if s.Repo == nil {
		return
	}
	entry := UpdateLog{
		ID:           uuid.NewString(),
		JobNumber:    jobNumber,
		Outcome:      outcome,
		UpdateText:   text,
		ErrorMessage: errMsg,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, entry); err != nil {
		telemetry.Error("update.log_failed", map[string]any{
			"job_number": jobNumber,
			"outcome":    outcome,
			"error":      err.Error(),
		})
	}
}
