package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseDNSFailure            FetchErrorCause = "DNS resolution failed"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseBodyTooLarge          FetchErrorCause = "response body exceeds size limit"
	ErrCauseRequestClientError    FetchErrorCause = "4xx"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
	ErrCauseCancelled             FetchErrorCause = "cancelled"
)

type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

// Fetch failures are always per-target: they become failure rows in the
// manifest and never abort the crawl.
func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseDNSFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestClientError, ErrCauseRequestTooMany, ErrCauseRequest5xx:
		return metadata.CauseHTTPStatus
	case ErrCauseReadResponseBodyError, ErrCauseBodyTooLarge:
		return metadata.CauseContentInvalid
	case ErrCauseCancelled:
		return metadata.CauseCancelled
	default:
		return metadata.CauseUnknown
	}
}
