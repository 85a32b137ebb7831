package listing

import (
	"net/url"

	"github.com/rohmanhakim/repo-manifest/pkg/urlutil"
)

// Link extraction & classification

// Role classifies a discovered URL by what fetching it should yield.
type Role int

const (
	// RoleListing marks a probable directory page enumerating further links.
	RoleListing Role = iota
	// RoleFile marks a leaf downloadable resource.
	RoleFile
)

func (r Role) String() string {
	switch r {
	case RoleListing:
		return "listing"
	case RoleFile:
		return "file"
	default:
		return "unknown"
	}
}

// Link is a single discovered URL together with its classified role.
// Links are produced in document order.
type Link struct {
	targetURL url.URL
	role      Role
}

func NewLink(targetURL url.URL, role Role) Link {
	return Link{
		targetURL: targetURL,
		role:      role,
	}
}

func (l *Link) URL() url.URL {
	return l.targetURL
}

func (l *Link) Role() Role {
	return l.role
}

// ClassifyRoot applies the same structural heuristic used for child links
// to the crawl root itself: a trailing path separator marks a listing,
// anything else is treated as a direct file resource.
func ClassifyRoot(rootURL url.URL) Role {
	if urlutil.HasTrailingSlash(rootURL) || rootURL.Path == "" {
		return RoleListing
	}
	return RoleFile
}
