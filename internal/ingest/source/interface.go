// Package source contains the adapters that fetch raw listing fragments
// from external job boards, one page at a time, under per-source rate
// limits.
package source

import (
	"context"
	"errors"
	"fmt"

	"jobboard-api/internal/ingest/extract"
)

// ErrUnknownSource is returned when a source identifier has no registered
// adapter.
var ErrUnknownSource = errors.New("unknown source")

// Adapter fetches one page of raw listing fragments from one external
// board. Implementations hold their own rate-limiter state; two
// consecutive FetchPage calls on the same instance are never closer
// together than the source's configured interval.
type Adapter interface {
	Name() string

	// PageSize is the fixed number of listings one page carries. A page
	// with fewer fragments signals the end of results.
	PageSize() int

	// FetchPage fetches the page at the given result offset. Failures are
	// reported as *FetchError after retries are exhausted; pages are never
	// silently collapsed into empty results.
	FetchPage(ctx context.Context, query, location string, offset int) ([]extract.Fragment, error)
}

// FetchError classifies a page-fetch failure. Transient errors (network,
// 5xx) were retried with backoff before being reported; permanent errors
// (unexpected response shape) were not.
type FetchError struct {
	Source    string
	Offset    int
	Transient bool
	Attempts  int
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s fetch error at offset %d after %d attempt(s): %v",
		e.Source, kind, e.Offset, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a transient fetch failure
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}
