package crawler

import (
	"github.com/rohmanhakim/repo-manifest/internal/frontier"
	"github.com/rohmanhakim/repo-manifest/internal/listing"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
)

// Crawl orchestration

// targetOutcome is what a worker hands back to the coordinator for one
// dispatched target. Exactly one of links / digest / err is meaningful,
// selected by the target's role and the error field.
type targetOutcome struct {
	target  frontier.CrawlTarget
	relPath string

	// listing expansion, in document order
	links []listing.Link

	// file digest result
	digest    string
	sizeBytes uint64

	err failure.ClassifiedError
}
