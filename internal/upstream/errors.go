package upstream

import "fmt"

// HTTPError is returned when the claims platform answers with a non-2xx status.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Reason string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream %s %s failed: %d %s", e.Method, e.Path, e.Status, e.Reason)
}

// LogicalError is returned when the platform answers 2xx but reports failure
// in-band (Status != "OK" in the response envelope), or when a response does
// not have the shape the workflow depends on.
type LogicalError struct {
	Path   string
	Detail string
}

func (e *LogicalError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("upstream response invalid: %s", e.Detail)
	}
	return fmt.Sprintf("upstream %s returned a logical failure: %s", e.Path, e.Detail)
}
