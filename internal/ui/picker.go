package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/trackshelf/internal/media"
	"github.com/olivier-w/trackshelf/internal/player"
)

// PickerSelectedMsg is sent when a file has been chosen for upload.
type PickerSelectedMsg struct {
	Path string
}

// PickerCancelledMsg is sent when the picker is dismissed without a choice.
type PickerCancelledMsg struct{}

type fileItem struct {
	name  string
	ext   string
	label string
}

func (i fileItem) Title() string       { return i.name + i.ext }
func (i fileItem) Description() string { return i.label }
func (i fileItem) FilterValue() string { return i.name + " " + i.label }

type dirItem struct{ name string }

func (i dirItem) Title() string       { return i.name + "/" }
func (i dirItem) Description() string { return "directory" }
func (i dirItem) FilterValue() string { return i.name }

type pathItem struct{}

func (i pathItem) Title() string       { return "Enter path..." }
func (i pathItem) Description() string { return "type the path of an audio file" }
func (i pathItem) FilterValue() string { return "path" }

// uploadPicker lists audio files of one directory for attaching to a track.
// Files the server will refuse are still listed; the upload check reports why.
type uploadPicker struct {
	dir      string
	list     list.Model
	input    textinput.Model
	pathMode bool
	open     bool
	err      error
}

func newUploadPicker() uploadPicker {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(strong).
		BorderLeftForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(muted).
		BorderLeftForeground(accent)

	l := list.New(nil, delegate, 60, 14)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Placeholder = "/path/to/song.mp3"
	ti.CharLimit = 4096
	ti.Width = 56

	return uploadPicker{list: l, input: ti}
}

// Open shows the picker on dir.
func (p *uploadPicker) Open(dir string) {
	p.open = true
	p.pathMode = false
	p.input.Reset()
	p.input.Blur()
	p.scan(dir)
}

func (p *uploadPicker) Close() {
	p.open = false
	p.pathMode = false
	p.input.Blur()
}

func (p uploadPicker) Active() bool { return p.open }

func (p *uploadPicker) scan(dir string) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.err = fmt.Errorf("cannot read directory: %w", err)
		p.list.SetItems([]list.Item{pathItem{}})
		return
	}
	p.err = nil
	p.dir = dir

	var files, dirs []list.Item
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, dirItem{name: name})
			continue
		}
		ext := filepath.Ext(name)
		if !media.IsUploadExt(ext) && !media.IsSupportedExt(ext) {
			continue
		}
		meta := player.ReadMetadata(filepath.Join(dir, name))
		label := strings.ToLower(strings.TrimPrefix(ext, "."))
		if meta.Tagged {
			label = meta.Label()
		}
		files = append(files, fileItem{name: strings.TrimSuffix(name, ext), ext: ext, label: label})
	}
	dirs = append(dirs, dirItem{name: ".."})

	items := slices.Concat([]list.Item{pathItem{}}, files, dirs)
	p.list.SetItems(items)
	p.list.ResetSelected()
	p.list.ResetFilter()
	p.list.Title = "Add audio · " + dir
}

func (p *uploadPicker) SetSize(width, height int) {
	p.list.SetSize(max(width-8, 20), max(height-12, 6))
}

func (p *uploadPicker) Update(msg tea.Msg) tea.Cmd {
	if !p.open {
		return nil
	}
	if p.pathMode {
		return p.updatePathInput(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && p.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "enter":
			switch item := p.list.SelectedItem().(type) {
			case pathItem:
				p.pathMode = true
				return tea.Batch(p.input.Focus(), textinput.Blink)
			case dirItem:
				p.scan(filepath.Join(p.dir, item.name))
				return nil
			case fileItem:
				path := filepath.Join(p.dir, item.name+item.ext)
				p.Close()
				return emit(PickerSelectedMsg{Path: path})
			}
		case "q", "esc":
			p.Close()
			return emit(PickerCancelledMsg{})
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *uploadPicker) updatePathInput(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(p.input.Value())
			if path == "" {
				return nil
			}
			p.Close()
			return emit(PickerSelectedMsg{Path: path})
		case "esc":
			p.pathMode = false
			p.input.Reset()
			p.input.Blur()
			return nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p uploadPicker) View() string {
	if p.pathMode {
		s := headerStyle.Render("Add audio") + "\n\n"
		s += statusStyle.Render("Enter path:") + "\n"
		s += p.input.View() + "\n\n"
		s += helpStyle.Render("enter confirm  esc back")
		return s
	}
	s := p.list.View()
	if p.err != nil {
		s += "\n" + errorStyle.Render(p.err.Error())
	}
	hint := fmt.Sprintf("%s · max %d MB", strings.Join(media.AllowedMIMETypes, ", "), media.MaxUploadSize/(1024*1024))
	return lipgloss.JoinVertical(lipgloss.Left, s, helpStyle.Render(hint))
}
