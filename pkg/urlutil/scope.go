package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// InScope reports whether target lives inside the crawl scope defined by
// root: same scheme and host, and a path at or below the root's directory.
//
// A stray external link on a listing page must never widen the crawl, so
// anything failing this check is discarded by the caller.
func InScope(root url.URL, target url.URL) bool {
	rootC := Canonicalize(root)
	targetC := Canonicalize(target)

	if targetC.Scheme != rootC.Scheme || targetC.Host != rootC.Host {
		return false
	}

	prefix := dirPath(rootC.Path)
	if prefix == "/" {
		return true
	}
	return targetC.Path == prefix || strings.HasPrefix(targetC.Path, prefix+"/")
}

// IsSelfOrAncestor reports whether target is the page itself or an
// ancestor directory of it. Listing pages routinely link back up the tree
// ("parent directory" rows); following those would never discover new files.
func IsSelfOrAncestor(page url.URL, target url.URL) bool {
	pageC := Canonicalize(page)
	targetC := Canonicalize(target)

	if targetC.Scheme != pageC.Scheme || targetC.Host != pageC.Host {
		return false
	}
	if targetC.Path == pageC.Path {
		return true
	}
	if targetC.Path == "/" {
		return true
	}
	return strings.HasPrefix(pageC.Path, targetC.Path+"/")
}

// HasTrailingSlash reports whether the raw (pre-canonicalization) URL path
// ends with a path separator, the listing-page convention for directories.
func HasTrailingSlash(u url.URL) bool {
	return strings.HasSuffix(u.Path, "/")
}

// RelativePath derives the manifest path for target relative to the parent
// of the root listing. For root "https://host/repo/" and target
// "https://host/repo/sub/b.txt" it yields "repo/sub/b.txt".
//
// Targets outside the root scope fall back to their full escaped path with
// the leading slash trimmed.
func RelativePath(root url.URL, target url.URL) string {
	targetC := Canonicalize(target)

	base := dirPath(Canonicalize(root).Path)
	parent := path.Dir(base)

	rel := targetC.Path
	if parent != "/" && strings.HasPrefix(rel, parent+"/") {
		rel = strings.TrimPrefix(rel, parent)
	}
	return strings.TrimPrefix(rel, "/")
}

// dirPath interprets a URL path as a directory path: trailing slashes are
// stripped and the empty path maps to root.
func dirPath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = stripTrailingSlash(p)
	}
	return p
}
