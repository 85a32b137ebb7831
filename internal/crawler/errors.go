package crawler

import (
	"fmt"

	"github.com/rohmanhakim/repo-manifest/pkg/failure"
)

type CrawlErrorCause string

const (
	ErrCauseNoTargetsProcessed CrawlErrorCause = "no target was successfully processed"
)

// CrawlError is a run-level failure: nothing usable came out of the crawl.
// Per-target failures never surface as CrawlError; they become manifest
// rows instead.
type CrawlError struct {
	Message string
	Cause   CrawlErrorCause
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl error: %s", e.Cause)
}

func (e *CrawlError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *CrawlError) IsRetryable() bool {
	return false
}

type ProcessErrorCause string

const (
	ErrCauseDigestFailure ProcessErrorCause = "content could not be digested"
)

// ProcessError is a per-target pipeline failure raised inside a worker.
// It folds into a manifest row like any other per-target error.
type ProcessError struct {
	Message string
	Cause   ProcessErrorCause
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process error: %s", e.Cause)
}

func (e *ProcessError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *ProcessError) IsRetryable() bool {
	return false
}
