package airtable

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no datastore credential is present.
var ErrNotConfigured = errors.New("airtable not configured")

// NotFoundError reports a job number with no matching project record.
type NotFoundError struct {
	JobNumber string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %q not found", e.JobNumber)
}

// UpstreamError wraps a transport or HTTP failure talking to Airtable.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("airtable %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("airtable %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
