package track

import (
	"encoding/json"
	"fmt"
	"math"
)

// SchemaError reports a server payload that does not match the expected shape.
type SchemaError struct {
	What  string // payload kind, e.g. "track"
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s payload: %s", e.What, e.Msg)
	}
	return fmt.Sprintf("invalid %s payload: %s %s", e.What, e.Field, e.Msg)
}

type object map[string]json.RawMessage

func decodeObject(what string, data []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, &SchemaError{What: what, Msg: "expected an object"}
	}
	return obj, nil
}

func (o object) has(field string) bool {
	raw, ok := o[field]
	return ok && string(raw) != "null"
}

func (o object) str(what, field string, required bool) (string, error) {
	if !o.has(field) {
		if required {
			return "", &SchemaError{What: what, Field: field, Msg: "is required"}
		}
		return "", nil
	}
	var s string
	if err := json.Unmarshal(o[field], &s); err != nil {
		return "", &SchemaError{What: what, Field: field, Msg: "must be a string"}
	}
	return s, nil
}

func (o object) num(what, field string) (int, error) {
	if !o.has(field) {
		return 0, &SchemaError{What: what, Field: field, Msg: "is required"}
	}
	var f float64
	if err := json.Unmarshal(o[field], &f); err != nil {
		return 0, &SchemaError{What: what, Field: field, Msg: "must be a number"}
	}
	if f != math.Trunc(f) {
		return 0, &SchemaError{What: what, Field: field, Msg: "must be an integer"}
	}
	return int(f), nil
}

func decodeStrings(what, field string, raw json.RawMessage) ([]string, error) {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, &SchemaError{What: what, Field: field, Msg: "must be an array of strings"}
	}
	return out, nil
}

// DecodeTrack validates and decodes a single track payload.
func DecodeTrack(data []byte) (Track, error) {
	obj, err := decodeObject("track", data)
	if err != nil {
		return Track{}, err
	}
	return trackFromObject(obj)
}

func trackFromObject(obj object) (Track, error) {
	const what = "track"
	var t Track
	var err error
	required := []struct {
		name string
		dst  *string
	}{
		{"id", &t.ID},
		{"title", &t.Title},
		{"artist", &t.Artist},
		{"slug", &t.Slug},
		{"createdAt", &t.CreatedAt},
		{"updatedAt", &t.UpdatedAt},
	}
	for _, f := range required {
		if *f.dst, err = obj.str(what, f.name, true); err != nil {
			return Track{}, err
		}
	}
	if t.Album, err = obj.str(what, "album", false); err != nil {
		return Track{}, err
	}
	if t.CoverImage, err = obj.str(what, "coverImage", false); err != nil {
		return Track{}, err
	}
	if t.AudioFile, err = obj.str(what, "audioFile", false); err != nil {
		return Track{}, err
	}
	if !obj.has("genres") {
		return Track{}, &SchemaError{What: what, Field: "genres", Msg: "is required"}
	}
	if t.Genres, err = decodeStrings(what, "genres", obj["genres"]); err != nil {
		return Track{}, err
	}
	return t, nil
}

// DecodeTrackPage validates and decodes a {data, meta} list payload.
func DecodeTrackPage(data []byte) (Page, error) {
	const what = "tracks"
	obj, err := decodeObject(what, data)
	if err != nil {
		return Page{}, err
	}
	if !obj.has("data") {
		return Page{}, &SchemaError{What: what, Field: "data", Msg: "is required"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(obj["data"], &items); err != nil {
		return Page{}, &SchemaError{What: what, Field: "data", Msg: "must be an array"}
	}
	tracks := make([]Track, 0, len(items))
	for i, raw := range items {
		item, err := decodeObject("track", raw)
		if err != nil {
			return Page{}, &SchemaError{What: what, Field: fmt.Sprintf("data[%d]", i), Msg: "must be an object"}
		}
		t, err := trackFromObject(item)
		if err != nil {
			return Page{}, err
		}
		tracks = append(tracks, t)
	}

	if !obj.has("meta") {
		return Page{}, &SchemaError{What: what, Field: "meta", Msg: "is required"}
	}
	metaObj, err := decodeObject("meta", obj["meta"])
	if err != nil {
		return Page{}, err
	}
	var meta PageMeta
	fields := []struct {
		name string
		dst  *int
	}{
		{"total", &meta.Total},
		{"totalPages", &meta.TotalPages},
		{"page", &meta.Page},
		{"limit", &meta.Limit},
	}
	for _, f := range fields {
		if *f.dst, err = metaObj.num("meta", f.name); err != nil {
			return Page{}, err
		}
	}
	return Page{Tracks: tracks, Meta: meta.Normalize()}, nil
}

// DecodeGenres validates and decodes the genre list payload.
func DecodeGenres(data []byte) ([]string, error) {
	return decodeStrings("genres", "", data)
}
