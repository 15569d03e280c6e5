package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/olivier-w/trackshelf/internal/api"
	"github.com/olivier-w/trackshelf/internal/library"
	"github.com/olivier-w/trackshelf/internal/player"
	"github.com/olivier-w/trackshelf/internal/route"
	"github.com/olivier-w/trackshelf/internal/track"
	"go.uber.org/zap"
)

// Library is what the UI needs from the track library. *library.Library
// implements it.
type Library interface {
	Tracks(ctx context.Context, q track.Query) (track.Page, error)
	Genres(ctx context.Context) ([]string, error)
	TrackBySlug(ctx context.Context, slug string) (track.Track, error)
	Create(ctx context.Context, d track.Draft) (track.Track, error)
	Update(ctx context.Context, id string, p track.Patch) (track.Track, error)
	Delete(ctx context.Context, id string) error
	UploadAudio(ctx context.Context, id, path string) (api.UploadResult, error)
	DeleteAudio(ctx context.Context, id string) error
	LoadAudio(ctx context.Context, req library.AudioRequest) (*library.CurrentTrack, error)
}

// AudioOpener starts playback of a local audio file.
type AudioOpener func(path string) (player.Audio, error)

// OpenPlayer plays through the audio device.
func OpenPlayer(path string) (player.Audio, error) {
	p, err := player.New(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Options configures the App.
type Options struct {
	Library        Library
	OpenAudio      AudioOpener
	Logger         *zap.Logger
	SearchDebounce time.Duration
	UploadDir      string
	Location       route.Location
}

// App is the root Bubbletea model of trackshelf.
type App struct {
	lib       Library
	open      AudioOpener
	log       *zap.Logger
	uploadDir string

	history *route.History
	list    listView
	form    formModal
	detail  detailModal
	confirm confirmDialog
	toast   toast

	// pendingConfirm is the id of the only confirmation whose answer is acted on.
	pendingConfirm uuid.UUID

	slot    *player.Slot
	preview *player.Slot
	loading player.Track
	bar     playerBar
	help    help.Model

	uploadingID string
	startup     tea.Cmd

	width    int
	height   int
	quitting bool
}

// New creates the App at opts.Location. A detail location fetches and opens
// that track as soon as the program starts.
func New(opts Options) App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	open := opts.OpenAudio
	if open == nil {
		open = OpenPlayer
	}
	loc := opts.Location
	if !loc.IsDetail() {
		loc = route.ListLocation(loc.TracksQuery())
	}

	m := App{
		lib:       opts.Library,
		open:      open,
		log:       log,
		uploadDir: opts.UploadDir,
		history:   route.NewHistory(loc),
		list:      newListView(opts.Library, loc.TracksQuery(), opts.SearchDebounce),
		form:      newFormModal(opts.Library),
		detail:    newDetailModal(opts.Library),
		confirm:   newConfirmDialog(),
		toast:     newToast(),
		slot:      player.NewSlot(context.Background()),
		preview:   player.NewSlot(context.Background()),
		bar:       newPlayerBar(),
		help:      help.New(),
	}

	cmds := []tea.Cmd{m.list.fetch(), m.list.loadGenres()}
	if loc.IsDetail() {
		cmds = append(cmds, m.detail.OpenSlug(loc.Slug()))
	}
	m.startup = tea.Batch(cmds...)
	return m
}

// FinalLocation is the location shown when the program ended.
func (m App) FinalLocation() string {
	return m.history.Current().String()
}

func (m App) Init() tea.Cmd {
	return tea.Batch(m.startup, tickCmd(), m.bar.spinner.Tick, tea.SetWindowTitle("trackshelf"))
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.handleMsg(msg)
	return m, cmd
}

func (m *App) handleMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width - 4
		m.detail.picker.SetSize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		m.bar.Sync(m.slot)
		return tickCmd()

	case spinner.TickMsg:
		return m.bar.Update(msg)

	case transitionFrameMsg:
		return tea.Batch(
			m.form.Update(msg),
			m.detail.Update(msg),
			m.confirm.Update(msg),
			m.toast.Update(msg),
		)

	case toastExpiredMsg:
		return m.toast.Update(msg)

	case tracksLoadedMsg:
		var cmd tea.Cmd
		if m.list.current(msg) && msg.err != nil && !api.IsCanceled(msg.err) {
			m.log.Warn("list tracks failed", zap.String("query", msg.key), zap.Error(msg.err))
			cmd = m.toast.Show("❌ "+api.Message(msg.err), toastError)
		}
		return tea.Batch(m.list.Update(msg), cmd)

	case genresLoadedMsg:
		if msg.err != nil {
			m.log.Warn("load genres failed", zap.Error(msg.err))
		} else if len(m.form.genres) == 0 {
			m.form.genres = msg.genres
		}
		return m.list.Update(msg)

	case searchDebounceMsg:
		cmd := m.list.Update(msg)
		m.syncListLocation()
		return cmd

	case trackLoadedMsg:
		if msg.err != nil && !api.IsCanceled(msg.err) {
			m.log.Warn("load track failed", zap.String("slug", msg.slug), zap.Error(msg.err))
		}
		return m.detail.Update(msg)

	case openDetailMsg:
		return m.openDetail(msg.track)

	case openFormMsg:
		if msg.track != nil && m.uploading(msg.track.ID) {
			return nil
		}
		return m.openForm(msg.track)

	case playTrackMsg:
		return m.play(mainSlot, msg.track)

	case askConfirmMsg:
		if m.uploading(msg.trackID) {
			return nil
		}
		return m.askConfirm(msg.message, msg.intent, msg.trackID)

	case ConfirmResultMsg:
		return m.handleConfirm(msg)

	case formSubmittedMsg:
		return m.handleFormSubmitted(msg)

	case PickerSelectedMsg:
		return m.upload(msg.Path)

	case PickerCancelledMsg:
		return m.toast.Show("ℹ️ Upload cancelled", toastInfo)

	case uploadDoneMsg:
		m.uploadingID = ""
		if msg.err != nil {
			m.log.Warn("upload audio failed", zap.String("id", msg.trackID), zap.Error(msg.err))
			return m.toast.Show("❌ "+api.Message(msg.err), toastError)
		}
		return tea.Batch(
			m.toast.Show("✅ Audio file uploaded successfully!", toastSuccess),
			m.list.Reload(),
			m.refreshDetail(msg.slug),
		)

	case audioDeletedMsg:
		if msg.err != nil {
			m.log.Warn("delete audio failed", zap.String("id", msg.trackID), zap.Error(msg.err))
			return m.toast.Show("❌ Error while deleting audio", toastError)
		}
		m.stopTrack(msg.trackID)
		return tea.Batch(
			m.toast.Show("✅ Audio deleted", toastSuccess),
			m.list.Reload(),
			m.refreshDetail(msg.slug),
		)

	case trackDeletedMsg:
		if msg.err != nil {
			m.log.Warn("delete track failed", zap.String("id", msg.trackID), zap.Error(msg.err))
			return m.toast.Show("❌ Error when deleting a track", toastError)
		}
		m.stopTrack(msg.trackID)
		cmds := []tea.Cmd{m.toast.Show("🗑️ Track deleted", toastSuccess), m.list.Reload()}
		if t, ok := m.detail.Track(); ok && t.ID == msg.trackID && m.detail.Active() {
			cmds = append(cmds, m.closeDetail())
		}
		return tea.Batch(cmds...)

	case audioLoadedMsg:
		return m.finishLoad(msg)

	case playbackEndedMsg:
		if m.slotFor(msg.which).End(msg.seq) && msg.which == mainSlot {
			m.bar.Sync(m.slot)
			return tea.SetWindowTitle("trackshelf")
		}
		return nil
	}
	return nil
}

func (m *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if isQuit(msg) {
		return m.quit()
	}
	if m.confirm.Active() {
		return m.confirm.Update(msg)
	}
	if m.form.Active() {
		return m.form.Update(msg)
	}
	if m.detail.Active() {
		return m.handleDetailKey(msg)
	}

	if m.list.Searching() {
		cmd := m.list.Update(msg)
		m.syncListLocation()
		return cmd
	}

	switch {
	case key.Matches(msg, listKeys.Quit):
		return m.quit()
	case key.Matches(msg, listKeys.Toggle):
		m.toggleMain()
		return nil
	case key.Matches(msg, listKeys.VolUp):
		m.adjustVolume(0.05)
		return nil
	case key.Matches(msg, listKeys.VolDown):
		m.adjustVolume(-0.05)
		return nil
	case key.Matches(msg, listKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}

	cmd := m.list.Update(msg)
	m.syncListLocation()
	return cmd
}

func (m *App) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	if m.detail.picker.Active() {
		return m.detail.picker.Update(msg)
	}
	if key.Matches(msg, detailKeys.Close) {
		return m.closeDetail()
	}
	if msg.String() == " " {
		m.toggleMain()
		return nil
	}

	t, ok := m.detail.Track()
	if !ok {
		return nil
	}
	uploading := m.uploading(t.ID)

	switch {
	case key.Matches(msg, detailKeys.Play):
		if !t.HasAudio() {
			return m.toast.Show("⚠️ This track has no audio file", toastWarning)
		}
		return m.play(mainSlot, t)
	case key.Matches(msg, detailKeys.Preview):
		return m.togglePreview(t)
	case key.Matches(msg, detailKeys.Upload):
		if !uploading && !t.HasAudio() {
			m.detail.picker.Open(m.uploadDir)
		}
	case key.Matches(msg, detailKeys.DeleteAudio):
		if !uploading && t.HasAudio() {
			return m.askConfirm("Delete audio file?", IntentDeleteAudio, t.ID)
		}
	case key.Matches(msg, detailKeys.Edit):
		if !uploading {
			return m.openForm(&t)
		}
	case key.Matches(msg, detailKeys.Delete):
		if !uploading {
			return m.askConfirm("Do you really want to delete this track?", IntentDeleteTrack, t.ID)
		}
	}
	return nil
}

// handleMouse seeks the global player when the progress bar is clicked.
func (m *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.height == 0 {
		return nil
	}
	if msg.Y != m.progressRow() {
		return nil
	}
	f, ok := m.bar.SeekFraction(msg.X, m.width)
	if !ok {
		return nil
	}
	if err := m.slot.Seek(f); err != nil {
		m.log.Warn("seek failed", zap.Float64("fraction", f), zap.Error(err))
		return m.toast.Show("❌ "+err.Error(), toastError)
	}
	m.bar.Sync(m.slot)
	return nil
}

// progressRow is the screen row of the progress bar. The footer is the player
// bar followed by one help line, anchored to the bottom.
func (m App) progressRow() int {
	return m.height - 2
}

func (m *App) quit() tea.Cmd {
	m.quitting = true
	m.list.Teardown()
	m.slot.Stop()
	m.preview.Stop()
	return tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m *App) adjustVolume(delta float64) {
	if v, ok := m.slot.Audio().(volumeControl); ok {
		v.AdjustVolume(delta)
		m.bar.Sync(m.slot)
	}
}

// syncListLocation mirrors the list query into the current location. Filter
// edits replace the entry instead of adding one.
func (m *App) syncListLocation() {
	cur := m.history.Current()
	if cur.IsDetail() {
		return
	}
	next := route.ListLocation(m.list.query)
	if next.String() != cur.String() {
		m.history.Replace(next)
	}
}

func (m *App) openDetail(t track.Track) tea.Cmd {
	loc := route.DetailLocation(t.Slug, m.list.query)
	if m.history.Current().IsDetail() {
		m.history.Replace(loc)
	} else {
		m.history.Push(loc)
	}
	return m.detail.Open(t)
}

// closeDetail returns to the list route, stepping back in history when the
// detail was pushed on top of it.
func (m *App) closeDetail() tea.Cmd {
	m.preview.Stop()
	cmd := m.detail.Close()
	if !m.history.Current().IsDetail() {
		return cmd
	}
	if loc, ok := m.history.Back(); ok && !loc.IsDetail() {
		return tea.Batch(cmd, m.list.SetQuery(loc.TracksQuery()))
	}
	m.history.Replace(route.ListLocation(m.list.query))
	return cmd
}

func (m *App) refreshDetail(slug string) tea.Cmd {
	if !m.detail.Active() || m.detail.Slug() != slug {
		return nil
	}
	return m.detail.Refresh()
}

func (m *App) openForm(t *track.Track) tea.Cmd {
	cmd := m.form.Open(t, m.list.genres)
	if len(m.list.genres) == 0 {
		return tea.Batch(cmd, m.list.loadGenres())
	}
	return cmd
}

func (m *App) handleFormSubmitted(msg formSubmittedMsg) tea.Cmd {
	formCmd := m.form.Update(msg)
	if msg.err != nil {
		m.log.Warn("save track failed", zap.Bool("editing", msg.editing), zap.Error(msg.err))
		text := api.Message(msg.err)
		if text == "" {
			text = "Error adding track!"
			if msg.editing {
				text = "Error updating track!"
			}
		}
		return tea.Batch(formCmd, m.toast.Show("❌ "+text, toastError))
	}

	text := "✅ Track added successfully!"
	if msg.editing {
		text = "✅ Track successfully updated!"
	}
	return tea.Batch(
		formCmd,
		m.list.Reload(),
		m.openDetail(msg.track),
		m.toast.Show(text, toastSuccess),
	)
}

func (m *App) askConfirm(message string, intent Intent, trackID string) tea.Cmd {
	req, cmd := m.confirm.Ask(message, intent, trackID)
	m.pendingConfirm = req.ID
	return cmd
}

func (m *App) handleConfirm(msg ConfirmResultMsg) tea.Cmd {
	if msg.ID != m.pendingConfirm {
		return nil
	}
	m.pendingConfirm = uuid.Nil
	if !msg.Confirmed {
		return nil
	}

	lib, id := m.lib, msg.TrackID
	switch msg.Intent {
	case IntentDeleteTrack:
		return func() tea.Msg {
			err := lib.Delete(context.Background(), id)
			return trackDeletedMsg{trackID: id, err: err}
		}
	case IntentDeleteAudio:
		slug := m.detail.Slug()
		return func() tea.Msg {
			err := lib.DeleteAudio(context.Background(), id)
			return audioDeletedMsg{trackID: id, slug: slug, err: err}
		}
	}
	return nil
}

func (m *App) upload(path string) tea.Cmd {
	t, ok := m.detail.Track()
	if !ok || m.uploadingID != "" {
		return nil
	}
	m.uploadingID = t.ID
	lib := m.lib
	return func() tea.Msg {
		_, err := lib.UploadAudio(context.Background(), t.ID, path)
		return uploadDoneMsg{trackID: t.ID, slug: t.Slug, err: err}
	}
}

func (m *App) slotFor(which slotName) *player.Slot {
	if which == previewSlot {
		return m.preview
	}
	return m.slot
}

// stopTrack empties any slot holding the track with the given id.
func (m *App) stopTrack(id string) {
	for _, s := range []*player.Slot{m.slot, m.preview} {
		if cur, ok := s.Current(); (ok && cur.ID == id) || s.LoadingID() == id {
			s.Stop()
		}
	}
	m.bar.Sync(m.slot)
}

// play loads t into the named slot. Any load already in flight for that slot
// is canceled.
func (m *App) play(which slotName, t track.Track) tea.Cmd {
	s := m.slotFor(which)
	ticket := s.Begin(t.ID)
	if which == mainSlot {
		m.loading = player.Track{ID: t.ID, Title: t.Title, Artist: t.Artist}
		m.preview.Stop()
	} else {
		m.slot.Pause()
	}
	m.bar.Sync(m.slot)

	lib, open := m.lib, m.open
	req := library.AudioRequest{ID: t.ID, FileName: t.AudioFile, Title: t.Title, Artist: t.Artist}
	return func() tea.Msg {
		cur, err := lib.LoadAudio(ticket.Ctx, req)
		if err != nil {
			return audioLoadedMsg{which: which, ticket: ticket, err: err}
		}
		a, err := open(cur.Path)
		if err != nil {
			cur.Release()
			return audioLoadedMsg{which: which, ticket: ticket, err: err}
		}
		return audioLoadedMsg{which: which, ticket: ticket, current: cur, audio: a}
	}
}

// uploading reports whether an audio upload for the track id is in flight.
// Edits and deletes of that track are refused until it settles.
func (m App) uploading(id string) bool {
	return id != "" && id == m.uploadingID
}

// toggleMain pauses or resumes the global player. Resuming pauses the preview.
func (m *App) toggleMain() {
	m.slot.Toggle()
	if m.slot.State() == player.Playing {
		m.preview.Pause()
	}
}

// togglePreview starts the inline preview of t, or pauses and resumes it.
// The global player is paused whenever the preview plays.
func (m *App) togglePreview(t track.Track) tea.Cmd {
	if !t.HasAudio() {
		return nil
	}
	if cur, ok := m.preview.Current(); ok && cur.ID == t.ID {
		m.preview.Toggle()
		if m.preview.State() == player.Playing {
			m.slot.Pause()
		}
		return nil
	}
	if m.preview.LoadingID() == t.ID {
		return nil
	}
	return m.play(previewSlot, t)
}

func (m *App) finishLoad(msg audioLoadedMsg) tea.Cmd {
	s := m.slotFor(msg.which)
	if msg.err != nil {
		if !s.Fail(msg.ticket, msg.err) {
			return nil
		}
		m.log.Warn("load audio failed", zap.Error(msg.err))
		return m.toast.Show("❌ "+api.Message(msg.err), toastError)
	}

	cur := msg.current
	tr := player.Track{ID: cur.ID, Title: cur.Title, Artist: cur.Artist}
	if !s.Commit(msg.ticket, tr, cur, msg.audio) {
		return nil
	}
	m.log.Debug("playback started", zap.String("id", cur.ID), zap.String("file", cur.File))

	var title tea.Cmd
	if msg.which == mainSlot {
		m.preview.Stop()
		title = tea.SetWindowTitle("▶ " + trackLabel(tr) + " · trackshelf")
	} else {
		m.slot.Pause()
	}
	m.bar.Sync(m.slot)
	return tea.Batch(title, waitForEnd(msg.which, msg.ticket, msg.audio))
}

func waitForEnd(which slotName, t player.Ticket, a player.Audio) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.Done():
			return playbackEndedMsg{which: which, seq: t.Seq}
		case <-t.Ctx.Done():
			return nil
		}
	}
}

func (m App) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width < 30 {
		width = 80
	}

	header := "  " + headerStyle.Render("trackshelf") + "  " + helpStyle.Render(m.history.Current().String())

	var body string
	switch {
	case m.form.Visible():
		body = lipgloss.NewStyle().MarginLeft(2).Render(m.form.View(width))
	case m.detail.Visible():
		t, _ := m.detail.Track()
		previewing := m.preview.IsPlaying(t.ID)
		body = lipgloss.NewStyle().MarginLeft(2).Render(
			m.detail.View(width, m.uploading(t.ID), m.bar.spinner.View(), previewing))
	default:
		playing := ""
		if cur, ok := m.slot.Current(); ok {
			playing = cur.ID
		}
		body = m.list.View(width, playing, m.uploadingID)
	}

	if m.confirm.Visible() {
		h := max(lipgloss.Height(body), 7)
		body = lipgloss.Place(width, h, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	top := "\n" + header + "\n"
	if m.toast.Visible() {
		top += lipgloss.NewStyle().MarginLeft(2).Render(m.toast.View()) + "\n"
	}
	top += "\n" + body

	// Modals draw their own key hints.
	var helpView string
	if !m.form.Visible() && !m.detail.Visible() {
		helpView = m.help.View(listKeys)
	}
	footer := m.bar.View(m.slot, m.loading, width) + "\n  " + helpView

	if m.height == 0 {
		return top + "\n\n" + footer
	}
	return fitHeight(top, m.height-playerBarLines-1) + "\n" + footer
}

// fitHeight pads or cuts s to exactly h lines.
func fitHeight(s string, h int) string {
	h = max(h, 1)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
