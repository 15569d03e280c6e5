package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/trackshelf/internal/api"
	"github.com/olivier-w/trackshelf/internal/track"
)

// detailModal shows one track. It can be opened from a list row, or from a
// slug alone when the app starts on a /tracks/:slug location.
type detailModal struct {
	lib     Library
	track   track.Track
	has     bool
	slug    string
	loading bool
	loadErr string

	picker uploadPicker
	fade   transition
}

func newDetailModal(lib Library) detailModal {
	return detailModal{lib: lib, picker: newUploadPicker(), fade: newTransition("detail")}
}

// Open shows t right away and refreshes it from the server.
func (d *detailModal) Open(t track.Track) tea.Cmd {
	d.track, d.has = t, true
	d.slug = t.Slug
	d.loading = false
	d.loadErr = ""
	d.picker.Close()
	return tea.Batch(d.fade.Open(), d.Refresh())
}

// OpenSlug shows a loading state until the track for slug arrives.
func (d *detailModal) OpenSlug(slug string) tea.Cmd {
	d.track, d.has = track.Track{}, false
	d.slug = slug
	d.loading = true
	d.loadErr = ""
	d.picker.Close()
	return tea.Batch(d.fade.Open(), d.Refresh())
}

// Refresh refetches the shown track by slug.
func (d *detailModal) Refresh() tea.Cmd {
	if d.slug == "" {
		return nil
	}
	lib, slug := d.lib, d.slug
	return func() tea.Msg {
		t, err := lib.TrackBySlug(context.Background(), slug)
		return trackLoadedMsg{slug: slug, track: t, err: err}
	}
}

func (d *detailModal) Close() tea.Cmd {
	d.picker.Close()
	return d.fade.Close()
}

func (d detailModal) Visible() bool { return d.fade.Visible() }

// Active reports whether the modal takes keyboard input.
func (d detailModal) Active() bool { return d.fade.IsOpen() }

// Track returns the shown track, if it has loaded.
func (d detailModal) Track() (track.Track, bool) { return d.track, d.has }

func (d detailModal) Slug() string { return d.slug }

func (d *detailModal) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case transitionFrameMsg:
		closed, cmd := d.fade.Update(msg)
		if closed {
			d.track, d.has = track.Track{}, false
			d.slug = ""
			d.loading = false
			d.loadErr = ""
		}
		return cmd
	case trackLoadedMsg:
		if msg.slug != d.slug || !d.fade.IsOpen() {
			return nil
		}
		d.loading = false
		if msg.err != nil {
			if api.IsCanceled(msg.err) || d.has {
				return nil
			}
			if api.IsNotFound(msg.err) {
				d.loadErr = "Track not found"
			} else {
				d.loadErr = api.Message(msg.err)
			}
			return nil
		}
		d.track, d.has = msg.track, true
		return nil
	}
	return nil
}

// View renders the modal. previewing reports whether the inline preview of
// this track is playing.
func (d detailModal) View(width int, uploading bool, spinner string, previewing bool) string {
	if !d.Visible() {
		return ""
	}
	style := modalStyle.Width(min(max(width-8, 40), 80))
	if d.fade.Closing() {
		style = style.Faint(true)
	}
	if d.picker.Active() {
		return style.Render(d.picker.View())
	}

	var b strings.Builder
	switch {
	case d.loading:
		b.WriteString(spinner + " " + statusStyle.Render("Loading track..."))
		return style.Render(b.String())
	case d.loadErr != "":
		b.WriteString(errorStyle.Render("❌ " + d.loadErr))
		b.WriteString("\n\n" + helpStyle.Render("esc close"))
		return style.Render(b.String())
	}

	t := d.track
	b.WriteString(titleStyle.Render(t.Title) + "\n")
	b.WriteString(artistStyle.Render(t.Artist) + "\n\n")

	field := func(label, value string) {
		if value == "" {
			value = placeholderStyle.Render("—")
		}
		b.WriteString(statusStyle.Render(label+": ") + value + "\n")
	}
	field("Album", t.Album)
	field("Genres", strings.Join(t.Genres, ", "))
	field("Cover", t.CoverImage)
	field("Slug", t.Slug)
	field("Created", t.CreatedAt)
	field("Updated", t.UpdatedAt)
	b.WriteString("\n")

	switch {
	case uploading:
		b.WriteString(spinner + " " + statusStyle.Render("Uploading audio..."))
	case t.HasAudio():
		state := "♪ " + t.AudioFile
		if previewing {
			state = selectedStyle.Render("▶ previewing ") + t.AudioFile
		}
		b.WriteString(state)
	default:
		b.WriteString(placeholderStyle.Render("No audio attached · press u to add a file"))
	}
	b.WriteString("\n\n" + d.help(uploading))
	return style.Render(b.String())
}

// help lists the detail keys, greying out the ones that do nothing right now.
func (d detailModal) help(uploading bool) string {
	audio := d.track.HasAudio()
	items := []struct {
		binding key.Binding
		enabled bool
	}{
		{detailKeys.Play, audio},
		{detailKeys.Preview, audio},
		{detailKeys.Upload, !uploading && !audio},
		{detailKeys.DeleteAudio, !uploading && audio},
		{detailKeys.Edit, !uploading},
		{detailKeys.Delete, !uploading},
		{detailKeys.Close, true},
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		h := it.binding.Help()
		style := helpStyle
		if !it.enabled {
			style = disabledStyle
		}
		parts = append(parts, style.Render(h.Key+" "+h.Desc))
	}
	return strings.Join(parts, "  ")
}
