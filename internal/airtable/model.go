package airtable

import "time"

// Project is the normalized view of a Projects-table record. Missing remote
// fields default to zero values rather than propagating nulls.
type Project struct {
	RecordID       string
	JobNumber      string
	JobName        string
	ClientName     string
	Stage          string
	Status         string
	Round          int
	WithClient     bool
	TeamsChannelID string
	CurrentUpdate  string
}

// ProjectPatch carries the mutable Projects-table fields. Nil means "leave
// unchanged"; only non-nil fields are sent.
type ProjectPatch struct {
	Stage      *string
	Status     *string
	LiveDate   *string
	WithClient *bool
}

// Empty reports whether the patch would send no fields.
func (p ProjectPatch) Empty() bool {
	return p.Stage == nil && p.Status == nil && p.LiveDate == nil && p.WithClient == nil
}

// fields maps the patch onto the exact Airtable column names. The names must
// stay bit-exact for compatibility with the existing base schema.
func (p ProjectPatch) fields() map[string]any {
	out := map[string]any{}
	if p.Stage != nil {
		out["Stage"] = *p.Stage
	}
	if p.Status != nil {
		out["Status"] = *p.Status
	}
	if p.LiveDate != nil {
		out["Live Date"] = *p.LiveDate
	}
	if p.WithClient != nil {
		out["With Client?"] = *p.WithClient
	}
	return out
}

// DateOnly is the wire format for Airtable date fields.
const DateOnly = "2006-01-02"

// FormatDate renders a time as an Airtable date value.
func FormatDate(t time.Time) string {
	return t.Format(DateOnly)
}
