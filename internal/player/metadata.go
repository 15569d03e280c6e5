package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata is the tag information shown next to local files.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Tagged bool // false when Title came from the file name
}

// ReadMetadata reads ID3v2 tags, falling back to the file name for the title.
// WAV files normally carry no ID3 tag and always fall back.
func ReadMetadata(path string) Metadata {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
			defer tag.Close()
			m := Metadata{
				Title:  strings.TrimSpace(tag.Title()),
				Artist: strings.TrimSpace(tag.Artist()),
				Album:  strings.TrimSpace(tag.Album()),
				Genre:  strings.TrimSpace(tag.Genre()),
				Tagged: true,
			}
			if m.Title != "" {
				return m
			}
		}
	}

	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}

// Label is "Artist - Title", or just the title when the artist is unknown.
func (m Metadata) Label() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}
