package updates

import "fmt"

// MalformedOutputError reports model output that could not be parsed as the
// expected JSON object. Raw carries the sanitized text for diagnostics.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// Rejection is the model's business-rule refusal: the input was readable but
// insufficient to produce an update. It is distinct from a failure; no
// persistence happens on this branch.
type Rejection struct {
	Code    string
	Message string
}

func (e *Rejection) Error() string {
	return fmt.Sprintf("update rejected: %s", e.Code)
}
