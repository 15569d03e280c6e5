package ui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/trackshelf/internal/track"
)

const (
	inputTitle = iota
	inputArtist
	inputAlbum
	inputCover
	inputCount
)

// Focus slots after the text inputs.
const (
	focusGenres = inputCount + iota
	focusSubmit
	focusSlots
)

var inputFields = [inputCount]string{
	inputTitle:  track.FieldTitle,
	inputArtist: track.FieldArtist,
	inputAlbum:  track.FieldAlbum,
	inputCover:  track.FieldCoverImage,
}

var inputLabels = [inputCount]string{"Title", "Artist", "Album", "Cover image URL"}

// formModal creates a track, or edits one when editing is set.
type formModal struct {
	lib     Library
	editing *track.Track

	inputs      [inputCount]textinput.Model
	focus       int
	genres      []string
	genreCursor int
	selected    []string
	errs        track.FieldErrors
	submitting  bool

	fade transition
}

func newFormModal(lib Library) formModal {
	f := formModal{lib: lib, fade: newTransition("form")}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		f.inputs[i] = ti
	}
	f.inputs[inputCover].Placeholder = "https://example.com/cover.jpg"
	return f
}

// Open shows the form prefilled from t, or empty when t is nil.
func (f *formModal) Open(t *track.Track, genres []string) tea.Cmd {
	f.reset()
	f.genres = genres
	if t != nil {
		cp := *t
		f.editing = &cp
		d := track.DraftOf(cp)
		f.inputs[inputTitle].SetValue(d.Title)
		f.inputs[inputArtist].SetValue(d.Artist)
		f.inputs[inputAlbum].SetValue(d.Album)
		f.inputs[inputCover].SetValue(d.CoverImage)
		f.selected = d.Genres
	}
	return tea.Batch(f.fade.Open(), f.setFocus(inputTitle))
}

func (f *formModal) Close() tea.Cmd {
	return f.fade.Close()
}

func (f *formModal) reset() {
	f.editing = nil
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = inputTitle
	f.genreCursor = 0
	f.selected = nil
	f.errs = nil
	f.submitting = false
}

func (f formModal) Visible() bool { return f.fade.Visible() }

// Active reports whether the form takes keyboard input.
func (f formModal) Active() bool { return f.fade.IsOpen() }

func (f formModal) Submitting() bool { return f.submitting }

func (f *formModal) setFocus(i int) tea.Cmd {
	f.focus = (i + focusSlots) % focusSlots
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f formModal) draft() track.Draft {
	return track.Draft{
		Title:      strings.TrimSpace(f.inputs[inputTitle].Value()),
		Artist:     strings.TrimSpace(f.inputs[inputArtist].Value()),
		Album:      strings.TrimSpace(f.inputs[inputAlbum].Value()),
		CoverImage: strings.TrimSpace(f.inputs[inputCover].Value()),
		Genres:     slices.Clone(f.selected),
	}
}

// submit validates every field and, when all pass, sends the write.
func (f *formModal) submit() tea.Cmd {
	if f.submitting {
		return nil
	}
	d := f.draft()
	f.errs = track.ValidateDraft(d)
	if !f.errs.OK() {
		return nil
	}
	f.submitting = true

	lib := f.lib
	if f.editing == nil {
		return func() tea.Msg {
			ctx := context.Background()
			created, err := lib.Create(ctx, d)
			if err != nil {
				return formSubmittedMsg{err: err}
			}
			return formSubmittedMsg{track: canonical(ctx, lib, created)}
		}
	}

	original := *f.editing
	patch := d.Diff(original)
	return func() tea.Msg {
		if patch.Empty() {
			return formSubmittedMsg{editing: true, track: original}
		}
		ctx := context.Background()
		updated, err := lib.Update(ctx, original.ID, patch)
		if err != nil {
			return formSubmittedMsg{editing: true, err: err}
		}
		return formSubmittedMsg{editing: true, track: canonical(ctx, lib, updated)}
	}
}

// canonical refetches t by slug, keeping the write response if that fails.
func canonical(ctx context.Context, lib Library, t track.Track) track.Track {
	if t.Slug == "" {
		return t
	}
	fresh, err := lib.TrackBySlug(ctx, t.Slug)
	if err != nil {
		return t
	}
	return fresh
}

func (f *formModal) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case transitionFrameMsg:
		closed, cmd := f.fade.Update(msg)
		if closed {
			f.reset()
		}
		return cmd

	case formSubmittedMsg:
		f.submitting = false
		if msg.err != nil {
			return nil
		}
		f.reset()
		return f.Close()

	case tea.KeyMsg:
		if !f.Active() || f.submitting {
			return nil
		}
		return f.updateKeys(msg)
	}
	return nil
}

func (f *formModal) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return f.Close()
	case "ctrl+s":
		return f.submit()
	case "tab", "down":
		return f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return f.setFocus(f.focus - 1)
	}

	switch f.focus {
	case focusGenres:
		switch msg.String() {
		case "left", "h":
			f.genreCursor = max(0, f.genreCursor-1)
		case "right", "l":
			f.genreCursor = min(len(f.genres)-1, f.genreCursor+1)
		case " ", "enter":
			if f.genreCursor < len(f.genres) {
				f.selected = track.ToggleGenre(f.selected, f.genres[f.genreCursor])
			}
		}
		return nil
	case focusSubmit:
		if msg.String() == "enter" {
			return f.submit()
		}
		return nil
	}

	if msg.String() == "enter" {
		return f.setFocus(f.focus + 1)
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f formModal) View(width int) string {
	if !f.Visible() {
		return ""
	}
	var b strings.Builder

	heading := "Create track"
	if f.editing != nil {
		heading = "Edit track"
	}
	b.WriteString(headerStyle.Render(heading) + "\n\n")

	for i, in := range f.inputs {
		label := statusStyle.Render(inputLabels[i])
		if f.focus == i {
			label = selectedStyle.Render(inputLabels[i])
		}
		b.WriteString(label + "\n  " + in.View() + "\n")
		if msg := f.errs[inputFields[i]]; msg != "" {
			b.WriteString("  " + errorStyle.Render(msg) + "\n")
		}
	}

	label := statusStyle.Render("Genres")
	if f.focus == focusGenres {
		label = selectedStyle.Render("Genres")
	}
	b.WriteString(label + "\n  " + f.genreChips(width-8) + "\n")
	if msg := f.errs[track.FieldGenres]; msg != "" {
		b.WriteString("  " + errorStyle.Render(msg) + "\n")
	}
	b.WriteString("\n")

	button := buttonStyle
	if f.focus == focusSubmit {
		button = activeButtonStyle
	}
	switch {
	case f.submitting:
		b.WriteString(disabledStyle.Render("Saving..."))
	case f.editing != nil:
		b.WriteString(button.Render("Save"))
	default:
		b.WriteString(button.Render("Create"))
	}
	b.WriteString("\n\n" + helpStyle.Render("tab next • space toggle genre • ctrl+s save • esc close"))

	style := modalStyle.Width(min(max(width-8, 40), 72))
	if f.fade.Closing() {
		style = style.Faint(true)
	}
	return style.Render(b.String())
}

func (f formModal) genreChips(width int) string {
	if len(f.genres) == 0 {
		return placeholderStyle.Render("No genres available")
	}
	chips := make([]string, 0, len(f.genres))
	for i, g := range f.genres {
		mark := "+ "
		if slices.Contains(f.selected, g) {
			mark = "✓ "
		}
		style := genreStyle
		if f.focus == focusGenres && i == f.genreCursor {
			style = style.Foreground(accent).Bold(true)
		}
		chips = append(chips, style.Render(mark+g))
	}
	return lipgloss.NewStyle().Width(max(width, 20)).Render(strings.Join(chips, " "))
}
