package types

import (
	"errors"
	"fmt"
)

// FetchError is a failed page request. Transient failures (timeouts,
// connection resets, HTTP 429) are eligible for backoff-retry; everything
// else is terminal for that page.
type FetchError struct {
	URL       string
	Status    int
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}

// ExtractionError means the page no longer matches the adapter's selectors.
// That indicates a site-structure change, so it fails the source for the run
// instead of being retried.
type ExtractionError struct {
	Source string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: extraction failed: %s", e.Source, e.Reason)
}
