package track

import (
	"net/url"
	"regexp"
	"strings"
)

// Form field names, as used in FieldErrors.
const (
	FieldTitle      = "title"
	FieldArtist     = "artist"
	FieldAlbum      = "album"
	FieldCoverImage = "coverImage"
	FieldGenres     = "genres"
)

// FieldErrors maps form field names to their validation message.
type FieldErrors map[string]string

// OK reports whether no field failed validation.
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

var imageURLPattern = regexp.MustCompile(`(?i)\.(jpeg|jpg|png|webp|gif|bmp|svg)(\?.*)?$`)

// ValidateDraft checks every field of d and returns all failures at once.
func ValidateDraft(d Draft) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(d.Title) == "" {
		errs[FieldTitle] = "Title is required!"
	}
	if strings.TrimSpace(d.Artist) == "" {
		errs[FieldArtist] = "Artist is required!"
	}
	if msg := validateCoverImage(strings.TrimSpace(d.CoverImage)); msg != "" {
		errs[FieldCoverImage] = msg
	}
	if len(d.Genres) == 0 {
		errs[FieldGenres] = "At least one genre must be selected"
	}
	return errs
}

func validateCoverImage(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Wrong URL"
	}
	if !imageURLPattern.MatchString(raw) {
		return "The link should lead to the image!"
	}
	return ""
}
