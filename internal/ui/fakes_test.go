package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/trackshelf/internal/api"
	"github.com/olivier-w/trackshelf/internal/library"
	"github.com/olivier-w/trackshelf/internal/track"
)

type fakeLibrary struct {
	mu sync.Mutex

	pages  map[string]track.Page
	tracks map[string]track.Track // by slug
	genres []string

	listCalls    []track.Query
	slugCalls    []string
	created      []track.Draft
	updated      []track.Patch
	deleted      []string
	audioDeleted []string
	uploads      []string

	writeErr  error
	loadAudio func(ctx context.Context, req library.AudioRequest) (*library.CurrentTrack, error)
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		pages:  map[string]track.Page{},
		tracks: map[string]track.Track{},
		genres: []string{"Jazz", "Rock"},
	}
}

func (f *fakeLibrary) Tracks(_ context.Context, q track.Query) (track.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, q)
	if p, ok := f.pages[q.Key()]; ok {
		return p, nil
	}
	return track.Page{Meta: track.PageMeta{Page: q.Page, Limit: 10}}, nil
}

func (f *fakeLibrary) Genres(context.Context) ([]string, error) {
	return f.genres, nil
}

func (f *fakeLibrary) TrackBySlug(_ context.Context, slug string) (track.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slugCalls = append(f.slugCalls, slug)
	if t, ok := f.tracks[slug]; ok {
		return t, nil
	}
	return track.Track{}, &api.Error{Op: "get track", Kind: api.KindStatus, Status: 404, Message: "Track not found"}
}

func (f *fakeLibrary) Create(_ context.Context, d track.Draft) (track.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return track.Track{}, f.writeErr
	}
	f.created = append(f.created, d)
	t := track.Track{ID: "new", Slug: "new-song", Title: d.Title, Artist: d.Artist, Genres: d.Genres}
	f.tracks[t.Slug] = t
	return t, nil
}

func (f *fakeLibrary) Update(_ context.Context, id string, p track.Patch) (track.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return track.Track{}, f.writeErr
	}
	f.updated = append(f.updated, p)
	for _, t := range f.tracks {
		if t.ID == id {
			if p.Title != nil {
				t.Title = *p.Title
			}
			f.tracks[t.Slug] = t
			return t, nil
		}
	}
	return track.Track{ID: id}, nil
}

func (f *fakeLibrary) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeLibrary) UploadAudio(_ context.Context, id, path string) (api.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return api.UploadResult{}, f.writeErr
	}
	f.uploads = append(f.uploads, id+":"+path)
	return api.UploadResult{URL: filepath.Base(path)}, nil
}

func (f *fakeLibrary) DeleteAudio(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.audioDeleted = append(f.audioDeleted, id)
	return nil
}

func (f *fakeLibrary) LoadAudio(ctx context.Context, req library.AudioRequest) (*library.CurrentTrack, error) {
	if f.loadAudio != nil {
		return f.loadAudio(ctx, req)
	}
	return &library.CurrentTrack{
		ID:     req.ID,
		File:   req.FileName,
		Path:   "/nonexistent/" + req.ID,
		Title:  req.Title,
		Artist: req.Artist,
	}, nil
}

func (f *fakeLibrary) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

type fakeAudio struct {
	mu       sync.Mutex
	path     string
	paused   bool
	closed   bool
	seekedTo float64
	volume   float64
	done     chan struct{}
}

func newFakeAudio(path string) *fakeAudio {
	return &fakeAudio{path: path, volume: 1, seekedTo: -1, done: make(chan struct{})}
}

func (a *fakeAudio) TogglePause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = !a.paused
}

func (a *fakeAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = true
}

func (a *fakeAudio) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

func (a *fakeAudio) Position() time.Duration { return 30 * time.Second }
func (a *fakeAudio) Duration() time.Duration { return 2 * time.Minute }
func (a *fakeAudio) Done() <-chan struct{}   { return a.done }
func (a *fakeAudio) Volume() float64         { return a.volume }

func (a *fakeAudio) AdjustVolume(delta float64) {
	a.volume = max(0, min(1, a.volume+delta))
}

func (a *fakeAudio) SeekFraction(f float64) error {
	a.seekedTo = f
	return nil
}

func (a *fakeAudio) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

func (a *fakeAudio) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// fakeOpener records every opened audio by path.
type fakeOpener struct {
	mu     sync.Mutex
	opened map[string]*fakeAudio
}

func (o *fakeOpener) open(path string) (*fakeAudio, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.opened == nil {
		o.opened = map[string]*fakeAudio{}
	}
	a := newFakeAudio(path)
	o.opened[path] = a
	return a, nil
}

// forTrack returns the audio opened for the track with the given id.
func (o *fakeOpener) forTrack(id string) *fakeAudio {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opened["/nonexistent/"+id]
}

// collectMsgs runs cmd and every command batched inside it. Commands that
// block longer than a short wait (toast timers, slow ticks) are dropped.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T in msgs.
func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func countMsgs[T any](msgs []tea.Msg) int {
	n := 0
	for _, m := range msgs {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleTracks(n int) []track.Track {
	out := make([]track.Track, n)
	for i := range out {
		out[i] = track.Track{
			ID:     fmt.Sprintf("id-%d", i+1),
			Title:  fmt.Sprintf("Song %d", i+1),
			Artist: "Band",
			Slug:   fmt.Sprintf("song-%d", i+1),
			Genres: []string{"Rock"},
		}
	}
	return out
}

func chdirTemp(t *testing.T, files map[string]string) func() {
	t.Helper()

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir temp dir: %v", err)
	}

	return func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	}
}
