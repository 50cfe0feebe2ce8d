package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"dotupdate-backend/internal/shared/telemetry"
	"dotupdate-backend/internal/shared/util"
)

// Client talks to the Airtable REST API for the Projects and Updates tables.
type Client struct {
	apiKey        string
	baseURL       string
	baseID        string
	projectsTable string
	updatesTable  string
	httpClient    *http.Client
	now           func() time.Time
}

// NewClient constructs an Airtable client. An empty apiKey yields a client
// whose operations report ErrNotConfigured rather than failing construction,
// so the service can start degraded.
func NewClient(apiKey, baseURL, baseID, projectsTable, updatesTable string) *Client {
	timeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("AIRTABLE_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:        apiKey,
		baseURL:       strings.TrimRight(baseURL, "/"),
		baseID:        baseID,
		projectsTable: projectsTable,
		updatesTable:  updatesTable,
		httpClient:    &http.Client{Timeout: timeout},
		now:           time.Now,
	}
}

type recordList struct {
	Records []record `json:"records"`
}

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ProjectByJobNumber performs an exact-match filtered query against the
// Projects table and normalizes the first matching record.
func (c *Client) ProjectByJobNumber(ctx context.Context, jobNumber string) (Project, error) {
	if c.apiKey == "" {
		return Project{}, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("filterByFormula", fmt.Sprintf("{Job Number}='%s'", jobNumber))
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.baseID, url.PathEscape(c.projectsTable), query.Encode())

	var list recordList
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &list, "project lookup"); err != nil {
		return Project{}, err
	}

	if len(list.Records) == 0 {
		return Project{}, &NotFoundError{JobNumber: jobNumber}
	}
	if len(list.Records) > 1 {
		// Duplicate job numbers are a data problem; surface them but keep
		// the historical first-record behavior.
		telemetry.Warn("airtable.duplicate_job_number", map[string]any{
			"job_number": jobNumber,
			"matches":    len(list.Records),
		})
	}

	rec := list.Records[0]
	return normalizeProject(rec, jobNumber), nil
}

// CreateUpdate inserts one row in the Updates table linked to a project. An
// empty text is nothing to persist and succeeds without a remote call. A zero
// due date defaults to 5 business days from today.
func (c *Client) CreateUpdate(ctx context.Context, projectRecordID, text string, due time.Time) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	if due.IsZero() {
		due = util.AddBusinessDays(c.now(), 5)
	}

	payload := map[string]any{
		"fields": map[string]any{
			"Project Link": []string{projectRecordID},
			"Update":       text,
			"Updated on":   FormatDate(c.now()),
			"Update due":   FormatDate(due),
		},
	}
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.updatesTable))
	return c.do(ctx, http.MethodPost, endpoint, payload, nil, "create update")
}

// PatchProject applies only the non-nil fields of the patch to a project
// record. An empty patch is a no-op success.
func (c *Client) PatchProject(ctx context.Context, projectRecordID string, patch ProjectPatch) error {
	if patch.Empty() {
		return nil
	}
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	payload := map[string]any{"fields": patch.fields()}
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.projectsTable), projectRecordID)
	return c.do(ctx, http.MethodPatch, endpoint, payload, nil, "patch project")
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any, op string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &UpstreamError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func normalizeProject(rec record, jobNumber string) Project {
	f := rec.Fields

	return Project{
		RecordID:       rec.ID,
		JobNumber:      stringFieldDefault(f, "Job Number", jobNumber),
		JobName:        stringField(f, "Project Name"),
		ClientName:     stringField(f, "Client"),
		Stage:          stringField(f, "Stage"),
		Status:         stringField(f, "Status"),
		Round:          intField(f, "Round"),
		WithClient:     boolField(f, "With Client?"),
		TeamsChannelID: stringField(f, "Teams Channel ID"),
		CurrentUpdate:  stringField(f, "Update"),
	}
}

// stringField reads a string field; linked-record and lookup fields arrive as
// arrays, in which case the first element wins.
func stringField(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func stringFieldDefault(f map[string]any, key, def string) string {
	if v, ok := f[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intField(f map[string]any, key string) int {
	if v, ok := f[key].(float64); ok {
		return int(v)
	}
	return 0
}

func boolField(f map[string]any, key string) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return false
}
