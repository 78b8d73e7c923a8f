package dart

import "fmt"

// ValidationError reports a query parameter that failed validation before
// any request was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ResolutionError reports that a company name could not be resolved to a
// registry code.
type ResolutionError struct {
	Query string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no company matched %q", e.Query)
}

// APIError reports a non-success status in an upstream response envelope.
// The message comes from the upstream and never includes credentials.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error (status %s)", e.Status)
	}
	return fmt.Sprintf("upstream error (status %s): %s", e.Status, e.Message)
}

// NoData reports whether the error is the upstream's "no matching data"
// status, which callers treat as a soft miss rather than a failure.
func (e *APIError) NoData() bool { return e.Status == statusNoData }
