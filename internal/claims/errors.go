package claims

import "fmt"

// UnexpectedResultCountError is returned when a claim search finds a
// different number of matches than the workflow requires: a duplicate
// correlation id during FNOL, or a missing claim during payment.
type UnexpectedResultCountError struct {
	ExternalID string
	Want       int
	Got        int
}

func (e *UnexpectedResultCountError) Error() string {
	return fmt.Sprintf("expected %d claim(s) but found %d claim(s) for %s", e.Want, e.Got, e.ExternalID)
}
