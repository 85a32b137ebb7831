package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/repo-manifest/internal/metadata"
	"github.com/rohmanhakim/repo-manifest/pkg/failure"
	"github.com/rohmanhakim/repo-manifest/pkg/urlutil"
)

/*
Responsibilities

- Parse a listing page's HTML into a DOM tree
- Resolve every anchor against the page URL
- Confine discovery to the crawl root's origin and path prefix
- Classify each surviving link as Listing or File

Classification Rules

- Trailing path separator → Listing candidate
- The page itself, or an ancestor of it → dropped (listing pages link back
  up the tree; following those never discovers new files)
- Anything else in scope → File

Ordering

Links are returned in document order so that crawl order, and therefore
output for a fixed site graph, is deterministic. Duplicates within one
page keep their first occurrence.

The parser never fetches; it only consumes bytes handed to it.
*/

type LinkParser struct {
	metadataSink metadata.MetadataSink
}

func NewLinkParser(
	metadataSink metadata.MetadataSink,
) LinkParser {
	return LinkParser{
		metadataSink: metadataSink,
	}
}

// Parse extracts in-scope links from a listing body fetched at pageURL.
// rootURL defines the confinement scope. A body that cannot be parsed as
// HTML yields a ParseError; the caller treats that as an empty link set.
func (p *LinkParser) Parse(
	rootURL url.URL,
	pageURL url.URL,
	htmlByte []byte,
) ([]Link, failure.ClassifiedError) {
	links, err := parse(rootURL, pageURL, htmlByte)
	if err != nil {
		p.metadataSink.RecordError(
			time.Now(),
			"listing",
			"LinkParser.Parse",
			mapParseErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL.String()),
			},
		)
		return nil, err
	}
	return links, nil
}

func parse(rootURL url.URL, pageURL url.URL, htmlByte []byte) ([]Link, *ParseError) {
	if len(htmlByte) == 0 {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		return nil, &ParseError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	var links []Link
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link, ok := resolveAndClassify(rootURL, pageURL, href)
		if !ok {
			return
		}

		canon := urlutil.Canonicalize(link.targetURL)
		key := canon.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, link)
	})

	return links, nil
}

// resolveAndClassify turns one raw href into an absolute, in-scope Link.
// The second return value is false when the href must be discarded:
// malformed, non-HTTP, out of scope, or pointing at the page itself or an
// ancestor of it.
func resolveAndClassify(rootURL url.URL, pageURL url.URL, href string) (Link, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return Link{}, false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		// Malformed links are dropped silently; they do not fail the page.
		return Link{}, false
	}

	resolved := pageURL.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return Link{}, false
	}

	if !urlutil.InScope(rootURL, *resolved) {
		return Link{}, false
	}
	if urlutil.IsSelfOrAncestor(pageURL, *resolved) {
		return Link{}, false
	}

	role := RoleFile
	if urlutil.HasTrailingSlash(*resolved) {
		role = RoleListing
	}

	return NewLink(*resolved, role), true
}
