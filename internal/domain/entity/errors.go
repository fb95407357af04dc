package entity

import "fmt"

// RequestFailedError indicates the rate feed answered with a non-2xx status.
type RequestFailedError struct {
	StatusCode int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("rate feed request failed with status %d", e.StatusCode)
}

// FetchError indicates a network, decode, or transform failure while
// retrieving observations.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch rates: %v", e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
