package metadata

import (
	"time"

	"go.uber.org/zap"
)

/*
Recorder captures structured crawl events and emits them through a zap
logger.

It must not:
- perform I/O decisions
- affect control flow
- leak backend details to callers

Ordering guarantees:
- Events are recorded synchronously in the order they are received by a
  single worker.
- No global ordering across workers is guaranteed.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	workerId string
	logger   *zap.Logger
}

func NewRecorder(workerId string, logger *zap.Logger) Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Recorder{
		workerId: workerId,
		logger:   logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	fields := []zap.Field{
		zap.String("worker", r.workerId),
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.String("cause", cause.String()),
		zap.String("error", errorString),
	}
	for _, attr := range attrs {
		fields = append(fields, zap.String(string(attr.Key), attr.Value))
	}
	r.logger.Warn("crawl error", fields...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	crawlDepth int,
) {
	r.logger.Info("fetch",
		zap.String("worker", r.workerId),
		zap.String("url", fetchUrl),
		zap.Int("status", httpStatus),
		zap.Duration("duration", duration),
		zap.String("content_type", contentType),
		zap.Int("retries", retryCount),
		zap.Int("depth", crawlDepth),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := []zap.Field{
		zap.String("worker", r.workerId),
		zap.String("kind", string(kind)),
		zap.String("path", path),
	}
	for _, attr := range attrs {
		fields = append(fields, zap.String(string(attr.Key), attr.Value))
	}
	r.logger.Info("artifact", fields...)
}

/*
RecordFinalCrawlStats records a terminal, derived summary of a completed
crawl.

Contract:
  - MUST be called exactly once per crawl execution.
  - MUST be called only after crawl termination
    (frontier exhausted or external cancellation).
  - The provided stats MUST be derived from crawler state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow or scheduling.
*/
func (r *Recorder) RecordFinalCrawlStats(
	totalTargets int,
	totalErrors int,
	totalBytes uint64,
	duration time.Duration,
) {
	stats := crawlStats{
		totalTargets: totalTargets,
		totalErrors:  totalErrors,
		totalBytes:   totalBytes,
		durationMs:   duration.Milliseconds(),
	}

	r.logger.Info("crawl finished",
		zap.String("worker", r.workerId),
		zap.Int("total_targets", stats.totalTargets),
		zap.Int("total_errors", stats.totalErrors),
		zap.Uint64("total_bytes", stats.totalBytes),
		zap.Int64("duration_ms", stats.durationMs),
	)
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
		crawlDepth int,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		totalTargets int,
		totalErrors int,
		totalBytes uint64,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink and CrawlFinalizer but records nothing.
// Callers can decide whether to inject Recorder or NoopSink; the purpose
// is to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	crawlDepth int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalCrawlStats(
	totalTargets int,
	totalErrors int,
	totalBytes uint64,
	duration time.Duration,
) {
}
