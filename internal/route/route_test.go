package route

import (
	"net/url"
	"testing"

	"github.com/olivier-w/trackshelf/internal/track"
)

func TestQueryRoundTrip(t *testing.T) {
	queries := []track.Query{
		track.DefaultQuery(),
		track.DefaultQuery().WithPage(3),
		track.DefaultQuery().WithSort("title").WithOrder(track.Asc),
		track.DefaultQuery().WithGenre("Hip Hop").WithSearch("a&b=c").WithPage(2),
		track.DefaultQuery().WithArtist("Björk").WithSort("album"),
	}
	for _, q := range queries {
		got := DecodeQuery(EncodeQuery(q))
		if got != q {
			t.Fatalf("round trip of %+v = %+v", q, got)
		}
		// Through the string form as well.
		loc, err := Parse(ListLocation(q).String())
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got := loc.TracksQuery(); got != q {
			t.Fatalf("string round trip of %+v = %+v", q, got)
		}
	}
}

func TestEncodeQueryOmitsDefaults(t *testing.T) {
	v := EncodeQuery(track.DefaultQuery())
	if v.Has("page") || v.Has("genre") || v.Has("search") || v.Has("artist") {
		t.Fatalf("expected page and empty filters omitted, got %q", v.Encode())
	}
	if v.Get("sort") != "createdAt" || v.Get("order") != "desc" {
		t.Fatalf("unexpected sort/order %q", v.Encode())
	}
	if got := EncodeQuery(track.DefaultQuery().WithPage(2)).Get("page"); got != "2" {
		t.Fatalf("expected page=2, got %q", got)
	}
}

func TestDecodeQueryFallsBackOnInvalidValues(t *testing.T) {
	v := url.Values{}
	v.Set("page", "-4")
	v.Set("order", "sideways")
	v.Set("sort", "bpm")
	q := DecodeQuery(v)
	if q != track.DefaultQuery() {
		t.Fatalf("expected defaults, got %+v", q)
	}

	v.Set("page", "abc")
	if q := DecodeQuery(v); q.Page != 1 {
		t.Fatalf("expected page 1, got %d", q.Page)
	}
}

func TestParseRoutes(t *testing.T) {
	tests := []struct {
		raw    string
		slug   string
		genre  string
		hasErr bool
	}{
		{raw: "", slug: ""},
		{raw: "/", slug: ""},
		{raw: "/tracks?genre=Rock", genre: "Rock"},
		{raw: "/tracks/my-song", slug: "my-song"},
		{raw: "/tracks/my-song/?genre=Jazz", slug: "my-song", genre: "Jazz"},
		{raw: "/albums", hasErr: true},
		{raw: "https://example.com/tracks", hasErr: true},
	}
	for _, tt := range tests {
		loc, err := Parse(tt.raw)
		if tt.hasErr {
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.raw, err)
		}
		if loc.Slug() != tt.slug {
			t.Fatalf("Parse(%q).Slug() = %q, want %q", tt.raw, loc.Slug(), tt.slug)
		}
		if loc.TracksQuery().Genre != tt.genre {
			t.Fatalf("Parse(%q) genre = %q, want %q", tt.raw, loc.TracksQuery().Genre, tt.genre)
		}
	}
}

func TestDetailLocationKeepsListState(t *testing.T) {
	q := track.DefaultQuery().WithGenre("Rock").WithPage(2)
	loc := DetailLocation("my song", q)
	if loc.Slug() != "my song" || !loc.IsDetail() {
		t.Fatalf("unexpected detail location %+v", loc)
	}
	if got := loc.String(); got != "/tracks/my%20song?genre=Rock&order=desc&page=2&sort=createdAt" {
		t.Fatalf("String() = %q", got)
	}
	parsed, err := Parse(loc.String())
	if err != nil || parsed.Slug() != "my song" || parsed.TracksQuery() != q {
		t.Fatalf("Parse(String()) = %+v, %v", parsed, err)
	}
}

func TestHistory(t *testing.T) {
	list := ListLocation(track.DefaultQuery())
	h := NewHistory(list)

	h.Replace(ListLocation(track.DefaultQuery().WithGenre("Rock")))
	if h.Len() != 1 || h.Current().TracksQuery().Genre != "Rock" {
		t.Fatalf("expected replace in place, got len=%d", h.Len())
	}

	detail := DetailLocation("song", h.Current().TracksQuery())
	h.Push(detail)
	h.Push(detail)
	if h.Len() != 2 {
		t.Fatalf("expected duplicate push ignored, got len=%d", h.Len())
	}

	back, ok := h.Back()
	if !ok || back.IsDetail() || back.TracksQuery().Genre != "Rock" {
		t.Fatalf("unexpected back location %+v, %v", back, ok)
	}
	if _, ok := h.Back(); ok {
		t.Fatal("expected first entry to stay")
	}
}
