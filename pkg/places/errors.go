package places

import (
	"errors"
	"fmt"
)

// FailureKind partitions provider failures for the orchestrator. All kinds
// degrade to "zero records for that call"; the kind is still surfaced so
// callers can log and count them separately instead of scraping console
// output.
type FailureKind string

const (
	// FailureRateLimited means the provider returned HTTP 429.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureTransport covers network errors and non-2xx server responses.
	FailureTransport FailureKind = "transport"
	// FailureMalformed means the response body could not be decoded.
	FailureMalformed FailureKind = "malformed"
)

// Failure is a typed provider failure.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("places: %s (status %d): %v", f.Kind, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("places: %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf extracts the failure kind from an error chain. The second return
// is false for errors that are not provider failures.
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}
