package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/trackshelf/internal/library"
	"github.com/olivier-w/trackshelf/internal/media"
	"github.com/olivier-w/trackshelf/internal/player"
	"github.com/olivier-w/trackshelf/internal/route"
	"github.com/olivier-w/trackshelf/internal/track"
)

func update(m App, msg tea.Msg) (App, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(App), cmd
}

// feed applies every message cmd produces, one level deep.
func feed(m App, cmd tea.Cmd) App {
	for _, msg := range collectMsgs(cmd) {
		m, _ = update(m, msg)
	}
	return m
}

func newTestApp(t *testing.T, lib *fakeLibrary, op *fakeOpener, loc string) App {
	t.Helper()
	l, err := route.Parse(loc)
	if err != nil {
		t.Fatalf("parse %q: %v", loc, err)
	}
	opts := Options{Library: lib, Location: l, UploadDir: "."}
	if op != nil {
		opts.OpenAudio = func(path string) (player.Audio, error) { return op.open(path) }
	}
	return New(opts)
}

// withTracks loads tracks as the first page of the app's list.
func withTracks(m App, tracks []track.Track) App {
	m, _ = update(m, tracksLoadedMsg{key: m.list.query.Key(), seq: m.list.seq, page: pageOf(tracks, 1, 1)})
	return m
}

func TestAppDeepLinkOpensTrack(t *testing.T) {
	lib := newFakeLibrary()
	lib.tracks["song-1"] = sampleTracks(1)[0]

	m := newTestApp(t, lib, nil, "/tracks/song-1")
	if !m.detail.Active() || !m.detail.loading {
		t.Fatal("expected detail to open in loading state")
	}

	msg, ok := findMsg[trackLoadedMsg](collectMsgs(m.startup))
	if !ok {
		t.Fatal("expected startup to fetch the track")
	}
	m, _ = update(m, msg)

	got, ok := m.detail.Track()
	if !ok || got.ID != "id-1" || m.detail.loading {
		t.Fatalf("expected loaded track, got %+v loading=%v", got, m.detail.loading)
	}
	if m.FinalLocation() != "/tracks/song-1" {
		t.Fatalf("unexpected location %q", m.FinalLocation())
	}
}

func TestAppDeepLinkUnknownTrack(t *testing.T) {
	lib := newFakeLibrary()
	m := newTestApp(t, lib, nil, "/tracks/missing")

	msg, _ := findMsg[trackLoadedMsg](collectMsgs(m.startup))
	m, _ = update(m, msg)
	if m.detail.loadErr != "Track not found" {
		t.Fatalf("expected not found error, got %q", m.detail.loadErr)
	}
}

func TestAppClosingDeepLinkReplacesWithList(t *testing.T) {
	lib := newFakeLibrary()
	m := newTestApp(t, lib, nil, "/tracks/song-1")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.FinalLocation() != "/tracks?order=desc&sort=createdAt" {
		t.Fatalf("unexpected location %q", m.FinalLocation())
	}
	if m.history.Len() != 1 {
		t.Fatalf("expected a single history entry, got %d", m.history.Len())
	}
}

func TestAppDetailPushesAndCloseGoesBack(t *testing.T) {
	lib := newFakeLibrary()
	tracks := sampleTracks(2)
	m := withTracks(newTestApp(t, lib, nil, "/tracks?genre=Rock"), tracks)

	m, _ = update(m, openDetailMsg{track: tracks[0]})
	if m.FinalLocation() != "/tracks/song-1?genre=Rock&order=desc&sort=createdAt" {
		t.Fatalf("unexpected detail location %q", m.FinalLocation())
	}
	if m.history.Len() != 2 {
		t.Fatalf("expected detail to push, got %d entries", m.history.Len())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.FinalLocation() != "/tracks?genre=Rock&order=desc&sort=createdAt" {
		t.Fatalf("unexpected list location %q", m.FinalLocation())
	}
	if m.history.Len() != 1 {
		t.Fatalf("expected close to go back, got %d entries", m.history.Len())
	}
}

func TestAppFilterChangesReplaceLocation(t *testing.T) {
	lib := newFakeLibrary()
	m := withTracks(newTestApp(t, lib, nil, "/tracks?page=2"), sampleTracks(1))

	m, cmd := update(m, keyRunes("s"))
	if cmd == nil {
		t.Fatal("expected a fetch")
	}
	if m.FinalLocation() != "/tracks?order=desc&sort=title" {
		t.Fatalf("unexpected location %q", m.FinalLocation())
	}
	if m.history.Len() != 1 {
		t.Fatal("expected filter edits to replace the entry")
	}
}

func TestAppDeleteTrackConfirmFlow(t *testing.T) {
	lib := newFakeLibrary()
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), sampleTracks(2))

	m, cmd := update(m, keyRunes("d"))
	m = feed(m, cmd)
	if !m.confirm.Active() || m.confirm.req.Message != "Do you really want to delete this track?" {
		t.Fatal("expected delete confirmation")
	}

	// No: nothing is deleted.
	m, cmd = update(m, keyRunes("n"))
	m = feed(m, cmd)
	if len(lib.deleted) != 0 {
		t.Fatal("expected no delete after declining")
	}

	m, cmd = update(m, keyRunes("d"))
	m = feed(m, cmd)
	m, cmd = update(m, keyRunes("y"))
	res, ok := findMsg[ConfirmResultMsg](collectMsgs(cmd))
	if !ok {
		t.Fatal("expected confirmation result")
	}
	m, cmd = update(m, res)
	if cmd == nil {
		t.Fatal("expected delete command")
	}
	deleted, ok := cmd().(trackDeletedMsg)
	if !ok || deleted.trackID != "id-1" {
		t.Fatalf("unexpected delete result: %+v", deleted)
	}
	m, _ = update(m, deleted)
	if len(lib.deleted) != 1 || lib.deleted[0] != "id-1" {
		t.Fatalf("expected id-1 deleted, got %v", lib.deleted)
	}
	if m.toast.message != "🗑️ Track deleted" {
		t.Fatalf("unexpected toast %q", m.toast.message)
	}

	// A repeated answer for the same request is ignored.
	if _, cmd := update(m, res); cmd != nil {
		t.Fatal("expected stale confirmation to be ignored")
	}
}

func TestAppDeleteFromDetailClosesIt(t *testing.T) {
	lib := newFakeLibrary()
	tracks := sampleTracks(1)
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), tracks)
	m, _ = update(m, openDetailMsg{track: tracks[0]})

	m, _ = update(m, trackDeletedMsg{trackID: "id-1"})
	if m.detail.Active() {
		t.Fatal("expected detail to close")
	}
	if m.FinalLocation() != "/tracks?order=desc&sort=createdAt" {
		t.Fatalf("unexpected location %q", m.FinalLocation())
	}
}

func TestAppDeleteFailureShowsToast(t *testing.T) {
	m := newTestApp(t, newFakeLibrary(), nil, "/tracks")
	m, _ = update(m, trackDeletedMsg{trackID: "id-1", err: context.DeadlineExceeded})
	if m.toast.message != "❌ Error when deleting a track" {
		t.Fatalf("unexpected toast %q", m.toast.message)
	}
}

func TestAppPlayLatestTrackWins(t *testing.T) {
	lib := newFakeLibrary()
	op := &fakeOpener{}
	tracks := sampleTracks(2)
	tracks[0].AudioFile = "a.mp3"
	tracks[1].AudioFile = "b.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)

	m, loadA := update(m, playTrackMsg{track: tracks[0]})
	m, loadB := update(m, playTrackMsg{track: tracks[1]})
	if m.slot.State() != player.Loading || m.slot.LoadingID() != "id-2" {
		t.Fatalf("expected B loading, got %v %q", m.slot.State(), m.slot.LoadingID())
	}

	m, _ = update(m, loadB())
	m, _ = update(m, loadA())

	cur, ok := m.slot.Current()
	if !ok || cur.ID != "id-2" || m.slot.State() != player.Playing {
		t.Fatalf("expected B playing, got %+v %v", cur, m.slot.State())
	}
	if !op.forTrack("id-1").isClosed() {
		t.Fatal("expected superseded audio to be closed")
	}
	if op.forTrack("id-2").isClosed() {
		t.Fatal("expected current audio to stay open")
	}
}

func TestAppCanceledLoadIsSilent(t *testing.T) {
	lib := newFakeLibrary()
	lib.loadAudio = func(ctx context.Context, req library.AudioRequest) (*library.CurrentTrack, error) {
		if req.ID == "id-1" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &library.CurrentTrack{ID: req.ID, Path: "/nonexistent/" + req.ID}, nil
	}
	op := &fakeOpener{}
	tracks := sampleTracks(2)
	tracks[0].AudioFile = "a.mp3"
	tracks[1].AudioFile = "b.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)

	m, loadA := update(m, playTrackMsg{track: tracks[0]})
	m, loadB := update(m, playTrackMsg{track: tracks[1]})
	m, _ = update(m, loadA())
	if m.toast.Visible() {
		t.Fatalf("expected canceled load to stay silent, got %q", m.toast.message)
	}
	m, _ = update(m, loadB())
	if !m.slot.IsPlaying("id-2") {
		t.Fatal("expected B playing")
	}
}

func TestAppNaturalEndEmptiesSlot(t *testing.T) {
	lib := newFakeLibrary()
	op := &fakeOpener{}
	tracks := sampleTracks(1)
	tracks[0].AudioFile = "a.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)

	m, load := update(m, playTrackMsg{track: tracks[0]})
	m, wait := update(m, load())
	close(op.forTrack("id-1").done)

	ended, ok := findMsg[playbackEndedMsg](collectMsgs(wait))
	if !ok {
		t.Fatal("expected playback end message")
	}
	m, _ = update(m, ended)
	if m.slot.State() != player.Empty {
		t.Fatalf("expected empty slot, got %v", m.slot.State())
	}
}

func TestAppSpaceTogglesPause(t *testing.T) {
	lib := newFakeLibrary()
	op := &fakeOpener{}
	tracks := sampleTracks(1)
	tracks[0].AudioFile = "a.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)
	m, load := update(m, playTrackMsg{track: tracks[0]})
	m, _ = update(m, load())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.slot.State() != player.Paused || !op.forTrack("id-1").Paused() {
		t.Fatal("expected paused")
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.slot.State() != player.Playing {
		t.Fatal("expected playing again")
	}
}

func TestAppMouseClickSeeks(t *testing.T) {
	lib := newFakeLibrary()
	op := &fakeOpener{}
	tracks := sampleTracks(1)
	tracks[0].AudioFile = "a.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	// Nothing loaded: clicks do nothing.
	m, _ = update(m, tea.MouseMsg{X: 40, Y: 28, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	m, load := update(m, playTrackMsg{track: tracks[0]})
	m, _ = update(m, load())
	audio := op.forTrack("id-1")

	start, width := m.bar.barLayout(100)
	m, _ = update(m, tea.MouseMsg{X: start + width/2, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if audio.seekedTo != -1 {
		t.Fatal("expected clicks outside the bar row to be ignored")
	}

	m, _ = update(m, tea.MouseMsg{X: start + width/2, Y: 28, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	want := float64(width/2) / float64(width)
	if audio.seekedTo != want {
		t.Fatalf("expected seek to %v, got %v", want, audio.seekedTo)
	}
}

func TestAppPreviewPausesGlobalPlayer(t *testing.T) {
	lib := newFakeLibrary()
	op := &fakeOpener{}
	tracks := sampleTracks(2)
	tracks[0].AudioFile = "a.mp3"
	tracks[1].AudioFile = "b.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)

	m, load := update(m, playTrackMsg{track: tracks[0]})
	m, _ = update(m, load())
	m, _ = update(m, openDetailMsg{track: tracks[1]})

	m, loadPreview := update(m, keyRunes("v"))
	if m.slot.State() != player.Paused || !op.forTrack("id-1").Paused() {
		t.Fatal("expected global player paused by preview")
	}
	m, _ = update(m, loadPreview())
	if !m.preview.IsPlaying("id-2") {
		t.Fatal("expected preview playing")
	}

	// Closing the detail stops the preview.
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.preview.State() != player.Empty || !op.forTrack("id-2").isClosed() {
		t.Fatal("expected preview stopped on close")
	}
}

func TestAppResumingGlobalPlayerPausesPreview(t *testing.T) {
	lib := newFakeLibrary()
	op := &fakeOpener{}
	tracks := sampleTracks(2)
	tracks[0].AudioFile = "a.mp3"
	tracks[1].AudioFile = "b.mp3"
	m := withTracks(newTestApp(t, lib, op, "/tracks"), tracks)

	m, load := update(m, playTrackMsg{track: tracks[0]})
	m, _ = update(m, load())
	m, _ = update(m, openDetailMsg{track: tracks[1]})
	m, loadPreview := update(m, keyRunes("v"))
	m, _ = update(m, loadPreview())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.slot.State() != player.Playing {
		t.Fatalf("expected global player resumed, got %v", m.slot.State())
	}
	if m.preview.State() != player.Paused || !op.forTrack("id-2").Paused() {
		t.Fatal("expected preview paused when the global player resumes")
	}
}

func TestAppListRefusesEditAndDeleteDuringUpload(t *testing.T) {
	lib := newFakeLibrary()
	tracks := sampleTracks(1)
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), tracks)
	m, _ = update(m, openDetailMsg{track: tracks[0]})
	m, upload := update(m, PickerSelectedMsg{Path: "take.mp3"})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.detail.Active() || m.uploadingID != "id-1" {
		t.Fatal("expected list view with the upload still running")
	}

	m, cmd := update(m, keyRunes("d"))
	m = feed(m, cmd)
	if m.confirm.Active() {
		t.Fatal("expected delete refused while the track uploads")
	}
	m, cmd = update(m, keyRunes("e"))
	m = feed(m, cmd)
	if m.form.Active() {
		t.Fatal("expected edit refused while the track uploads")
	}

	m, _ = update(m, upload())
	m = withTracks(m, tracks)
	m, cmd = update(m, keyRunes("d"))
	m = feed(m, cmd)
	if !m.confirm.Active() {
		t.Fatal("expected delete offered once the upload finished")
	}
}

func TestAppInfoAndWarningToasts(t *testing.T) {
	lib := newFakeLibrary()
	tracks := sampleTracks(1)
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), tracks)
	m, _ = update(m, openDetailMsg{track: tracks[0]})

	m, _ = update(m, keyRunes("p"))
	if m.toast.kind != toastWarning || m.toast.message != "⚠️ This track has no audio file" {
		t.Fatalf("unexpected toast %v %q", m.toast.kind, m.toast.message)
	}
	if m.slot.State() != player.Empty {
		t.Fatal("expected nothing to play")
	}

	m, _ = update(m, PickerCancelledMsg{})
	if m.toast.kind != toastInfo || m.toast.message != "ℹ️ Upload cancelled" {
		t.Fatalf("unexpected toast %v %q", m.toast.kind, m.toast.message)
	}
}

func TestAppUploadFlow(t *testing.T) {
	lib := newFakeLibrary()
	tracks := sampleTracks(1)
	lib.tracks["song-1"] = tracks[0]
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), tracks)
	m, _ = update(m, openDetailMsg{track: tracks[0]})

	m, cmd := update(m, PickerSelectedMsg{Path: "take.mp3"})
	if m.uploadingID != "id-1" {
		t.Fatal("expected upload in progress")
	}
	if !strings.Contains(m.View(), "Uploading audio") {
		t.Fatal("expected upload indicator")
	}

	// Destructive actions are disabled while uploading.
	if _, c := update(m, keyRunes("d")); c != nil {
		t.Fatal("expected delete disabled during upload")
	}

	m, _ = update(m, cmd())
	if m.uploadingID != "" {
		t.Fatal("expected upload finished")
	}
	if m.toast.message != "✅ Audio file uploaded successfully!" {
		t.Fatalf("unexpected toast %q", m.toast.message)
	}
	if len(lib.uploads) != 1 || lib.uploads[0] != "id-1:take.mp3" {
		t.Fatalf("unexpected uploads %v", lib.uploads)
	}
}

func TestAppUploadRejectedShowsReason(t *testing.T) {
	lib := newFakeLibrary()
	lib.writeErr = &media.UploadError{Reason: "File is too large (31.00 MB). Maximum 30 MB."}
	tracks := sampleTracks(1)
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), tracks)
	m, _ = update(m, openDetailMsg{track: tracks[0]})

	m, cmd := update(m, PickerSelectedMsg{Path: "big.wav"})
	m, _ = update(m, cmd())
	if m.toast.message != "❌ File is too large (31.00 MB). Maximum 30 MB." {
		t.Fatalf("unexpected toast %q", m.toast.message)
	}
}

func TestAppCreateOpensCanonicalDetail(t *testing.T) {
	lib := newFakeLibrary()
	m := withTracks(newTestApp(t, lib, nil, "/tracks"), sampleTracks(1))
	m, _ = update(m, genresLoadedMsg{genres: []string{"Rock"}})

	m, _ = update(m, keyRunes("c"))
	m, _ = update(m, openFormMsg{})
	if !m.form.Active() {
		t.Fatal("expected form open")
	}
	m.form.inputs[inputTitle].SetValue("New")
	m.form.inputs[inputArtist].SetValue("Band")
	m.form.selected = []string{"Rock"}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(m, cmd())

	got, ok := m.detail.Track()
	if !ok || got.Slug != "new-song" {
		t.Fatalf("expected canonical detail, got %+v", got)
	}
	if m.toast.message != "✅ Track added successfully!" {
		t.Fatalf("unexpected toast %q", m.toast.message)
	}
	if !strings.HasPrefix(m.FinalLocation(), "/tracks/new-song?") {
		t.Fatalf("unexpected location %q", m.FinalLocation())
	}
}

func TestAppViewShowsPlayerBar(t *testing.T) {
	m := withTracks(newTestApp(t, newFakeLibrary(), nil, "/tracks"), sampleTracks(1))
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	if !strings.Contains(view, "Nothing playing") {
		t.Fatal("expected idle player bar")
	}
	if n := strings.Count(view, "\n") + 1; n != 30 {
		t.Fatalf("expected view to fill the window, got %d lines", n)
	}
}
