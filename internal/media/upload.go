package media

import (
	"fmt"
	"io"
	"os"
	"slices"
)

// AllowedMIMETypes lists the MIME types the server accepts for audio uploads.
var AllowedMIMETypes = []string{"audio/mpeg", "audio/mp3", "audio/wav"}

// MaxUploadSize is the largest audio file the server accepts.
const MaxUploadSize = 30 * 1024 * 1024

const maxUploadMB = MaxUploadSize / (1024 * 1024)

// FileInfo describes a file selected for upload.
type FileInfo struct {
	Name string
	Size int64
	MIME string
}

// UploadError is a client-side rejection of an upload. No request is made.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string { return e.Reason }

// ValidateUpload checks f against the MIME allow-list and the size limit.
func ValidateUpload(f FileInfo) error {
	if !slices.Contains(AllowedMIMETypes, f.MIME) {
		return &UploadError{Reason: "Unsupported file format. Acceptable ones are: mp3, wav, mpeg."}
	}
	if f.Size > MaxUploadSize {
		mb := float64(f.Size) / (1024 * 1024)
		return &UploadError{Reason: fmt.Sprintf("File is too large (%.2f MB). Maximum %d MB.", mb, maxUploadMB)}
	}
	return nil
}

// Inspect stats and sniffs the file at path.
func Inspect(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileInfo{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return FileInfo{
		Name: st.Name(),
		Size: st.Size(),
		MIME: DetectMIME(st.Name(), head[:n]),
	}, nil
}
