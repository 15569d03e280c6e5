// Package library exposes the Tracks API as cached reads and
// cache-invalidating writes.
package library

import (
	"context"
	"io"
	"os"

	"github.com/olivier-w/trackshelf/internal/api"
	"github.com/olivier-w/trackshelf/internal/cache"
	"github.com/olivier-w/trackshelf/internal/media"
	"github.com/olivier-w/trackshelf/internal/track"
	"go.uber.org/zap"
)

// Cache tags.
const (
	TagTracks cache.Tag = "tracks"
	TagTrack  cache.Tag = "track"
	TagGenres cache.Tag = "genres"
)

// Transport performs the remote calls. *api.Client implements it.
type Transport interface {
	ListTracks(ctx context.Context, q track.Query) (track.Page, error)
	Genres(ctx context.Context) ([]string, error)
	TrackBySlug(ctx context.Context, slug string) (track.Track, error)
	CreateTrack(ctx context.Context, d track.Draft) (track.Track, error)
	UpdateTrack(ctx context.Context, id string, p track.Patch) (track.Track, error)
	DeleteTrack(ctx context.Context, id string) error
	UploadAudio(ctx context.Context, id, path string, info media.FileInfo) (api.UploadResult, error)
	DeleteAudio(ctx context.Context, id string) error
	DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error)
}

// Library is the client-side view of the remote track library.
type Library struct {
	t      Transport
	cache  *cache.Cache
	log    *zap.Logger
	tmpDir string
}

// Options configures a Library.
type Options struct {
	Cache  *cache.Cache
	Logger *zap.Logger
	// TempDir holds downloaded audio. Empty means os.TempDir().
	TempDir string
}

// New creates a Library on top of t.
func New(t Transport, opts Options) *Library {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := opts.Cache
	if c == nil {
		c = cache.New(cache.Options{Logger: log})
	}
	return &Library{t: t, cache: c, log: log, tmpDir: opts.TempDir}
}

// Tracks returns one page of tracks for q.
func (l *Library) Tracks(ctx context.Context, q track.Query) (track.Page, error) {
	return cache.Get(ctx, l.cache, q.Key(), []cache.Tag{TagTracks}, func(ctx context.Context) (track.Page, error) {
		return l.t.ListTracks(ctx, q)
	})
}

// Genres returns the genres known to the server.
func (l *Library) Genres(ctx context.Context) ([]string, error) {
	return cache.Get(ctx, l.cache, "genres", []cache.Tag{TagGenres}, l.t.Genres)
}

// TrackBySlug returns the canonical copy of a track.
func (l *Library) TrackBySlug(ctx context.Context, slug string) (track.Track, error) {
	return cache.Get(ctx, l.cache, "track/"+slug, []cache.Tag{TagTrack}, func(ctx context.Context) (track.Track, error) {
		return l.t.TrackBySlug(ctx, slug)
	})
}

// Invalidate marks every cached track read as stale.
func (l *Library) Invalidate() {
	l.cache.Invalidate(TagTracks, TagTrack)
}

// Create creates a track.
func (l *Library) Create(ctx context.Context, d track.Draft) (track.Track, error) {
	t, err := l.t.CreateTrack(ctx, d)
	if err != nil {
		return track.Track{}, err
	}
	l.log.Info("track created", zap.String("id", t.ID), zap.String("slug", t.Slug))
	l.Invalidate()
	return t, nil
}

// Update applies p to the track with the given id.
func (l *Library) Update(ctx context.Context, id string, p track.Patch) (track.Track, error) {
	t, err := l.t.UpdateTrack(ctx, id, p)
	if err != nil {
		return track.Track{}, err
	}
	l.log.Info("track updated", zap.String("id", id))
	l.Invalidate()
	return t, nil
}

// Delete removes the track with the given id.
func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.t.DeleteTrack(ctx, id); err != nil {
		return err
	}
	l.log.Info("track deleted", zap.String("id", id))
	l.Invalidate()
	return nil
}

// UploadAudio validates the file at path and attaches it to the track.
// A *media.UploadError is returned, without any request, when the file
// fails the MIME or size checks.
func (l *Library) UploadAudio(ctx context.Context, id, path string) (api.UploadResult, error) {
	info, err := media.Inspect(path)
	if err != nil {
		return api.UploadResult{}, &media.UploadError{Reason: "Could not read file: " + err.Error()}
	}
	if err := media.ValidateUpload(info); err != nil {
		return api.UploadResult{}, err
	}

	res, err := l.t.UploadAudio(ctx, id, path, info)
	if err != nil {
		return api.UploadResult{}, err
	}
	l.log.Info("audio uploaded", zap.String("id", id), zap.String("file", info.Name), zap.Int64("size", info.Size))
	l.Invalidate()
	return res, nil
}

// DeleteAudio detaches the audio file of the track with the given id.
func (l *Library) DeleteAudio(ctx context.Context, id string) error {
	if err := l.t.DeleteAudio(ctx, id); err != nil {
		return err
	}
	l.log.Info("audio deleted", zap.String("id", id))
	l.Invalidate()
	return nil
}

func (l *Library) tempDir() string {
	if l.tmpDir != "" {
		return l.tmpDir
	}
	return os.TempDir()
}
