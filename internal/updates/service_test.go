package updates

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dotupdate-backend/internal/airtable"
	"dotupdate-backend/internal/llm"
)

type createdUpdate struct {
	recordID string
	text     string
	due      time.Time
}

type fakeStore struct {
	project   airtable.Project
	lookupErr error
	createErr error
	patchErr  error
	created   []createdUpdate
	patches   []airtable.ProjectPatch
}

func (f *fakeStore) ProjectByJobNumber(ctx context.Context, jobNumber string) (airtable.Project, error) {
	if f.lookupErr != nil {
		return airtable.Project{}, f.lookupErr
	}
	return f.project, nil
}

func (f *fakeStore) CreateUpdate(ctx context.Context, recordID, text string, due time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, createdUpdate{recordID: recordID, text: text, due: due})
	return nil
}

func (f *fakeStore) PatchProject(ctx context.Context, recordID string, patch airtable.ProjectPatch) error {
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patches = append(f.patches, patch)
	return nil
}

type fakeLLM struct {
	reply string
	err   error
	seen  llm.AnalyzeInput
}

func (f *fakeLLM) AnalyzeUpdate(ctx context.Context, input llm.AnalyzeInput) (string, error) {
	f.seen = input
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testProject() airtable.Project {
	return airtable.Project{
		RecordID:   "recABC",
		JobNumber:  "J-200",
		JobName:    "Website Refresh",
		ClientName: "Acme",
		Stage:      "Design",
		Status:     "On Track",
	}
}

func newTestService(store *fakeStore, model *fakeLLM) *Service {
	svc := NewService(store, model, NewMemoryRepo(), "system prompt")
	// Monday.
	svc.now = func() time.Time { return time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestProcessCreatesUpdateAndPatchesChangedStage(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{
		"updateSummary": "Client approved the designs, moving to production.",
		"stage": "Production",
		"status": null,
		"withClient": null,
		"hasBlocker": false,
		"confidence": "HIGH"
	}`}
	svc := newTestService(store, model)

	result, err := svc.Process(context.Background(), "J-200", "Client approved the designs, moving to production.")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !result.UpdateCreated {
		t.Fatalf("expected update to be created")
	}
	if len(store.created) != 1 || store.created[0].recordID != "recABC" {
		t.Fatalf("unexpected created updates: %+v", store.created)
	}
	if len(store.patches) != 1 {
		t.Fatalf("expected one project patch, got %d", len(store.patches))
	}
	patch := store.patches[0]
	if patch.Stage == nil || *patch.Stage != "Production" {
		t.Fatalf("expected stage patch, got %+v", patch)
	}
	if patch.Status != nil || patch.WithClient != nil || patch.LiveDate != nil {
		t.Fatalf("expected patch to contain only the stage, got %+v", patch)
	}
	if !result.ProjectUpdated {
		t.Fatalf("expected projectUpdated")
	}
}

func TestProcessComposesModelContext(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{"updateSummary": "ok", "confidence": "HIGH", "stage": null, "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	if _, err := svc.Process(context.Background(), "J-200", "All good this week."); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if model.seen.SystemPrompt != "system prompt" {
		t.Fatalf("expected system prompt to be passed through")
	}
	for _, want := range []string{"Job Number: J-200", "Job Name: Website Refresh", "Current Stage: Design", "All good this week."} {
		if !strings.Contains(model.seen.Content, want) {
			t.Fatalf("expected composed content to contain %q:\n%s", want, model.seen.Content)
		}
	}
}

func TestProcessDefaultsDueDateToFiveBusinessDays(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{"updateSummary": "ok", "confidence": "MEDIUM", "stage": null, "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	result, err := svc.Process(context.Background(), "J-200", "content")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// Monday 2025-08-18 + 5 business days = Monday 2025-08-25.
	want := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	if result.UpdateDue.Format("2006-01-02") != want.Format("2006-01-02") {
		t.Fatalf("expected due %s, got %s", want.Format("2006-01-02"), result.UpdateDue.Format("2006-01-02"))
	}
	if store.created[0].due.Format("2006-01-02") != "2025-08-25" {
		t.Fatalf("expected persisted due 2025-08-25, got %s", store.created[0].due.Format("2006-01-02"))
	}
}

func TestProcessUsesModelDueDateWhenPresent(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{"updateSummary": "ok", "confidence": "HIGH", "updateDue": "2025-09-03", "stage": null, "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	result, err := svc.Process(context.Background(), "J-200", "content")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.UpdateDue.Format("2006-01-02") != "2025-09-03" {
		t.Fatalf("expected model due date, got %s", result.UpdateDue.Format("2006-01-02"))
	}
}

func TestProcessStripsCodeFence(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: "```json\n{\"updateSummary\": \"ok\", \"confidence\": \"HIGH\", \"stage\": null, \"status\": null, \"withClient\": null}\n```"}
	svc := newTestService(store, model)

	result, err := svc.Process(context.Background(), "J-200", "content")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Analysis.UpdateSummary != "ok" {
		t.Fatalf("expected fenced JSON to parse, got %+v", result.Analysis)
	}
}

func TestProcessMalformedOutputNoWrites(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: "sorry, I could not help with that"}
	svc := newTestService(store, model)

	_, err := svc.Process(context.Background(), "J-200", "content")
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
	if malformed.Raw != "sorry, I could not help with that" {
		t.Fatalf("expected raw text carried, got %q", malformed.Raw)
	}
	if len(store.created) != 0 || len(store.patches) != 0 {
		t.Fatalf("expected no datastore writes on malformed output")
	}
}

func TestProcessRejectionNoWrites(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{"error": "insufficient_content", "message": "email too vague"}`}
	svc := newTestService(store, model)

	_, err := svc.Process(context.Background(), "J-200", "hi")
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected Rejection, got %v", err)
	}
	if rejection.Code != "insufficient_content" || rejection.Message != "email too vague" {
		t.Fatalf("unexpected rejection payload: %+v", rejection)
	}
	if len(store.created) != 0 || len(store.patches) != 0 {
		t.Fatalf("expected no datastore writes on rejection")
	}
}

func TestProcessEmptySummarySkipsWrite(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{"updateSummary": "", "confidence": "LOW", "stage": null, "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	result, err := svc.Process(context.Background(), "J-200", "content")
	if err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if result.UpdateCreated {
		t.Fatalf("expected updateCreated=false for empty summary")
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no update write")
	}
}

func TestProcessUpdateWriteFailureIsTerminal(t *testing.T) {
	store := &fakeStore{
		project:   testProject(),
		createErr: &airtable.UpstreamError{Op: "create update", Status: 502},
	}
	model := &fakeLLM{reply: `{"updateSummary": "ok", "confidence": "HIGH", "stage": null, "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	_, err := svc.Process(context.Background(), "J-200", "content")
	var upstream *airtable.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if len(store.patches) != 0 {
		t.Fatalf("expected no patch after terminal write failure")
	}
}

func TestProcessPatchFailureIsBestEffort(t *testing.T) {
	store := &fakeStore{
		project:  testProject(),
		patchErr: &airtable.UpstreamError{Op: "patch project", Status: 500},
	}
	model := &fakeLLM{reply: `{"updateSummary": "ok", "confidence": "HIGH", "stage": "Production", "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	result, err := svc.Process(context.Background(), "J-200", "content")
	if err != nil {
		t.Fatalf("expected success despite patch failure, got %v", err)
	}
	if !result.UpdateCreated {
		t.Fatalf("expected update still created")
	}
	if result.ProjectUpdated {
		t.Fatalf("expected projectUpdated=false after patch failure")
	}
}

func TestProcessRecordsOutcomeLog(t *testing.T) {
	store := &fakeStore{project: testProject()}
	model := &fakeLLM{reply: `{"updateSummary": "weekly check-in", "confidence": "HIGH", "stage": null, "status": null, "withClient": null}`}
	svc := newTestService(store, model)

	if _, err := svc.Process(context.Background(), "J-200", "content"); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries, err := svc.History(context.Background(), "J-200", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Outcome != OutcomeOK || entries[0].UpdateText != "weekly check-in" {
		t.Fatalf("unexpected log entry: %+v", entries[0])
	}
	if entries[0].ID == "" {
		t.Fatalf("expected log entry id")
	}
}
