package media

import (
	"net/http"
	"path/filepath"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// uploadExts are the formats the server accepts for attachment.
var uploadExts = map[string]string{
	".mp3":  "audio/mpeg",
	".mpeg": "audio/mpeg",
	".wav":  "audio/wav",
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsUploadExt returns true if files with this extension may be uploaded.
func IsUploadExt(ext string) bool {
	_, ok := uploadExts[strings.ToLower(ext)]
	return ok
}

// DetectMIME returns the MIME type of an audio file from its name, falling
// back to sniffing head (the first bytes of the file) when the extension is unknown.
func DetectMIME(name string, head []byte) string {
	if t, ok := uploadExts[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	t := http.DetectContentType(head)
	switch t {
	case "audio/wave":
		return "audio/wav"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}
