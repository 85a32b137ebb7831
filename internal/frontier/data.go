package frontier

import (
	"net/url"

	"github.com/rohmanhakim/repo-manifest/internal/listing"
	"github.com/rohmanhakim/repo-manifest/pkg/urlutil"
)

// Crawl state & ordering

// SourceContext records how a target entered the frontier.
type SourceContext string

const (
	SourceSeed  SourceContext = "Seed"
	SourceCrawl SourceContext = "Crawl"
)

// CrawlTarget is a URL admitted for crawling together with its discovered
// role and its link depth from the root.
//
// Invariants:
// - Scope confinement has already been enforced by the listing parser
// - Each distinct canonical URL is dispatched at most once per crawl run
// - A target is consumed exactly once by the crawler's dispatch loop
type CrawlTarget struct {
	targetURL    url.URL
	canonicalKey string
	role         listing.Role
	depth        int
	source       SourceContext
}

func NewCrawlTarget(
	targetURL url.URL,
	role listing.Role,
	depth int,
	source SourceContext,
) CrawlTarget {
	canon := urlutil.Canonicalize(targetURL)
	return CrawlTarget{
		targetURL:    targetURL,
		canonicalKey: canon.String(),
		role:         role,
		depth:        depth,
		source:       source,
	}
}

func (t *CrawlTarget) URL() url.URL {
	return t.targetURL
}

// CanonicalKey is the deduplication key: the canonicalized absolute URL.
func (t *CrawlTarget) CanonicalKey() string {
	return t.canonicalKey
}

func (t *CrawlTarget) Role() listing.Role {
	return t.role
}

func (t *CrawlTarget) Depth() int {
	return t.depth
}

func (t *CrawlTarget) Source() SourceContext {
	return t.source
}
