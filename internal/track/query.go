package track

import (
	"fmt"
	"net/url"
	"strings"
)

// Order is a list sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Toggle flips the sort direction.
func (o Order) Toggle() Order {
	if o == Asc {
		return Desc
	}
	return Asc
}

// Valid reports whether o is asc or desc.
func (o Order) Valid() bool {
	return o == Asc || o == Desc
}

// Sort fields accepted by the list endpoint, in the order the sort control cycles them.
var SortFields = []string{"createdAt", "title", "artist", "album"}

var sortLabels = map[string]string{
	"createdAt": "Date Created",
	"title":     "Title",
	"artist":    "Artist",
	"album":     "Album",
}

// SortLabel returns the display name of a sort field.
func SortLabel(field string) string {
	if l, ok := sortLabels[field]; ok {
		return l
	}
	return field
}

// NextSort returns the sort field following field in SortFields.
func NextSort(field string) string {
	for i, f := range SortFields {
		if f == field {
			return SortFields[(i+1)%len(SortFields)]
		}
	}
	return SortFields[0]
}

const (
	DefaultSort  = "createdAt"
	DefaultOrder = Desc
)

// Query is the filter/sort/pagination state of the track list.
type Query struct {
	Page   int
	Sort   string
	Order  Order
	Genre  string
	Search string
	Artist string
}

// DefaultQuery returns the query used when nothing else is specified.
func DefaultQuery() Query {
	return Query{Page: 1, Sort: DefaultSort, Order: DefaultOrder}
}

// WithPage moves to page p without touching filters. Pages below 1 clamp to 1.
func (q Query) WithPage(p int) Query {
	if p < 1 {
		p = 1
	}
	q.Page = p
	return q
}

// WithSort changes the sort field and returns to the first page.
func (q Query) WithSort(field string) Query {
	q.Sort = field
	q.Page = 1
	return q
}

// WithOrder changes the sort direction and returns to the first page.
func (q Query) WithOrder(o Order) Query {
	q.Order = o
	q.Page = 1
	return q
}

// WithGenre changes the genre filter and returns to the first page.
func (q Query) WithGenre(g string) Query {
	q.Genre = g
	q.Page = 1
	return q
}

// WithSearch changes the search term and returns to the first page.
func (q Query) WithSearch(s string) Query {
	q.Search = s
	q.Page = 1
	return q
}

// WithArtist changes the artist filter and returns to the first page.
func (q Query) WithArtist(a string) Query {
	q.Artist = a
	q.Page = 1
	return q
}

// Key identifies the query for caching and stale-response checks.
func (q Query) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tracks?page=%d&sort=%s&order=%s", q.Page, q.Sort, q.Order)
	if q.Genre != "" {
		fmt.Fprintf(&b, "&genre=%s", url.QueryEscape(q.Genre))
	}
	if q.Search != "" {
		fmt.Fprintf(&b, "&search=%s", url.QueryEscape(q.Search))
	}
	if q.Artist != "" {
		fmt.Fprintf(&b, "&artist=%s", url.QueryEscape(q.Artist))
	}
	return b.String()
}

// PageMeta describes one page of a list response.
type PageMeta struct {
	Total      int
	TotalPages int
	Page       int
	Limit      int
}

// Normalize recomputes TotalPages as ceil(Total/Limit).
func (m PageMeta) Normalize() PageMeta {
	if m.Limit > 0 {
		m.TotalPages = (m.Total + m.Limit - 1) / m.Limit
	} else {
		m.TotalPages = 0
	}
	if m.Page < 1 {
		m.Page = 1
	}
	return m
}

// HasPrev reports whether a previous page exists.
func (m PageMeta) HasPrev() bool {
	return m.Page > 1
}

// HasNext reports whether a next page exists.
func (m PageMeta) HasNext() bool {
	return m.Page < m.TotalPages
}

// Page is one page of tracks.
type Page struct {
	Tracks []Track
	Meta   PageMeta
}
