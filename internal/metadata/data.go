package metadata

import (
	"time"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content digests
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not reorder the frontier
 - Jitter is seed-controlled
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence crawl decisions.
*/

type FetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	retryCount  int
	crawlDepth  int
}

/*
crawlStats
  - Represents a terminal, derived summary of a completed crawl
  - Contains only aggregate counts and durations
  - Is computed by the crawler after traversal termination
  - Is recorded exactly once
  - Must not influence scheduling, retries, or crawl termination
*/
type crawlStats struct {
	totalTargets int
	totalErrors  int
	totalBytes   uint64
	durationMs   int64
}

// ArtifactKind identifies the kind of output a component produced.
type ArtifactKind string

const (
	ArtifactMirroredFile ArtifactKind = "mirrored_file"
	ArtifactManifest     ArtifactKind = "manifest"
	ArtifactReport       ArtifactKind = "report"
)

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause is for observability only.
  - It must never be used to derive retry, continuation, or abort decisions.
  - ErrorCause values MUST have stable, package-agnostic semantics.
  - Pipeline packages MAY map their local errors to ErrorCause,
    but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	// CauseUnknown: the failure does not map cleanly to any known category.
	CauseUnknown ErrorCause = iota
	// CauseNetworkFailure: transport-level failure (timeouts, DNS, resets).
	CauseNetworkFailure
	// CauseHTTPStatus: the server answered with a non-2xx status.
	CauseHTTPStatus
	// CauseContentInvalid: content was fetched but could not be processed
	// (unparseable listing body, empty document).
	CauseContentInvalid
	// CauseStorageFailure: failure while persisting crawl artifacts.
	CauseStorageFailure
	// CauseRetryFailure: retry budget exhausted.
	CauseRetryFailure
	// CauseCancelled: the crawl was aborted externally mid-flight.
	CauseCancelled
)

// String returns the canonical name used in log output.
func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseHTTPStatus:
		return "http_status"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseRetryFailure:
		return "retry_failure"
	case CauseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrDepth      AttributeKey = "depth"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrDigest     AttributeKey = "digest"
	AttrWritePath  AttributeKey = "write_path"
	AttrMessage    AttributeKey = "message"
)
