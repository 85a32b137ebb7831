package listing

import (
	"fmt"

	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseNotHTML ParseErrorCause = "body could not be parsed as HTML"
)

type ParseError struct {
	Message   string
	Retryable bool
	Cause     ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("listing error: %s", e.Cause)
}

// An unparseable listing body only prunes its own subtree; it never
// justifies aborting the crawl.
func (e *ParseError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *ParseError) IsRetryable() bool {
	return e.Retryable
}

// mapParseErrorToMetadataCause maps parser-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapParseErrorToMetadataCause(err *ParseError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
