// Package route maps list and detail state to locations of the form
// /tracks?sort=title&order=asc and /tracks/:slug.
package route

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/olivier-w/trackshelf/internal/track"
)

// ListPath is the path of the track list.
const ListPath = "/tracks"

// Location is a path plus its query string.
type Location struct {
	Path  string
	Query url.Values
}

// Parse reads a location such as "/tracks/my-song?genre=Rock". A bare "/" or
// empty string is the list route.
func Parse(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("parsing location %q: %w", raw, err)
	}
	if u.IsAbs() || u.Host != "" {
		return Location{}, fmt.Errorf("location %q must be a path, not a URL", raw)
	}
	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		path = ListPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != ListPath && !strings.HasPrefix(path, ListPath+"/") {
		return Location{}, fmt.Errorf("unknown route %q", u.Path)
	}
	return Location{Path: path, Query: u.Query()}, nil
}

// String renders the location with an encoded query string.
func (l Location) String() string {
	path := l.Path
	if slug := l.Slug(); slug != "" {
		path = ListPath + "/" + url.PathEscape(slug)
	}
	if len(l.Query) == 0 {
		return path
	}
	return path + "?" + l.Query.Encode()
}

// Slug returns the track slug of a detail location, or "" for the list.
func (l Location) Slug() string {
	rest, ok := strings.CutPrefix(l.Path, ListPath+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

// IsDetail reports whether the location opens a track's detail view.
func (l Location) IsDetail() bool {
	return l.Slug() != ""
}

// TracksQuery decodes the list state carried by the location.
func (l Location) TracksQuery() track.Query {
	return DecodeQuery(l.Query)
}

// ListLocation is the list route for q.
func ListLocation(q track.Query) Location {
	return Location{Path: ListPath, Query: EncodeQuery(q)}
}

// DetailLocation is the detail route of slug, keeping the list state of q so
// closing the detail returns to the same page.
func DetailLocation(slug string, q track.Query) Location {
	return Location{Path: ListPath + "/" + slug, Query: EncodeQuery(q)}
}

// DecodeQuery reads the recognized list parameters. Missing or invalid values
// fall back to their defaults.
func DecodeQuery(v url.Values) track.Query {
	q := track.DefaultQuery()
	if s := v.Get("sort"); slices.Contains(track.SortFields, s) {
		q.Sort = s
	}
	if o := track.Order(v.Get("order")); o.Valid() {
		q.Order = o
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p >= 1 {
		q.Page = p
	}
	q.Genre = v.Get("genre")
	q.Search = v.Get("search")
	q.Artist = v.Get("artist")
	return q
}

// EncodeQuery writes q as query parameters. Empty filters are omitted, as is
// page when it is 1.
func EncodeQuery(q track.Query) url.Values {
	v := url.Values{}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", string(q.Order))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	for _, kv := range [][2]string{{"genre", q.Genre}, {"search", q.Search}, {"artist", q.Artist}} {
		if kv[1] != "" {
			v.Set(kv[0], kv[1])
		}
	}
	return v
}
