package track

import "slices"

// Track is a single library entry as served by the Tracks API.
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	CoverImage string
	Genres     []string
	Slug       string
	AudioFile  string // empty until an audio asset is attached
	CreatedAt  string
	UpdatedAt  string
}

// HasAudio reports whether an audio file is attached to the track.
func (t Track) HasAudio() bool {
	return t.AudioFile != ""
}

// Draft holds the user-editable fields of a track.
type Draft struct {
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album,omitempty"`
	CoverImage string   `json:"coverImage,omitempty"`
	Genres     []string `json:"genres"`
}

// DraftOf returns the editable fields of t.
func DraftOf(t Track) Draft {
	return Draft{
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		CoverImage: t.CoverImage,
		Genres:     slices.Clone(t.Genres),
	}
}

// Patch is a partial update. Nil fields are left untouched by the server.
type Patch struct {
	Title      *string  `json:"title,omitempty"`
	Artist     *string  `json:"artist,omitempty"`
	Album      *string  `json:"album,omitempty"`
	CoverImage *string  `json:"coverImage,omitempty"`
	Genres     []string `json:"genres,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Artist == nil && p.Album == nil && p.CoverImage == nil && p.Genres == nil
}

// Diff returns the fields of d that differ from original.
func (d Draft) Diff(original Track) Patch {
	var p Patch
	if d.Title != original.Title {
		p.Title = ptr(d.Title)
	}
	if d.Artist != original.Artist {
		p.Artist = ptr(d.Artist)
	}
	if d.Album != original.Album {
		p.Album = ptr(d.Album)
	}
	if d.CoverImage != original.CoverImage {
		p.CoverImage = ptr(d.CoverImage)
	}
	if !sameGenres(d.Genres, original.Genres) {
		p.Genres = slices.Clone(d.Genres)
		if p.Genres == nil {
			p.Genres = []string{}
		}
	}
	return p
}

// ToggleGenre adds g to selected, or removes it when already present.
// The input slice is never modified.
func ToggleGenre(selected []string, g string) []string {
	if i := slices.Index(selected, g); i >= 0 {
		out := make([]string, 0, len(selected)-1)
		out = append(out, selected[:i]...)
		return append(out, selected[i+1:]...)
	}
	out := slices.Clone(selected)
	return append(out, g)
}

func sameGenres(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

func ptr(s string) *string { return &s }
