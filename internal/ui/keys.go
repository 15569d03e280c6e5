package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type listKeyMap struct {
	Up, Down     key.Binding
	Open         key.Binding
	Play         key.Binding
	Search       key.Binding
	Genre        key.Binding
	Sort         key.Binding
	Order        key.Binding
	Artist       key.Binding
	Reset        key.Binding
	Prev, Next   key.Binding
	Create, Edit key.Binding
	Delete       key.Binding
	Toggle       key.Binding
	VolUp        key.Binding
	VolDown      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

var listKeys = listKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Play:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Genre:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Order:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
	Artist:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "artist")),
	Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Prev:    key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←/h", "prev page")),
	Next:    key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→/l", "next page")),
	Create:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	VolUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
	VolDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vol down")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Play, k.Toggle, k.Search, k.Genre, k.Sort, k.Order, k.Create, k.Help, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Play, k.Toggle, k.VolUp, k.VolDown},
		{k.Search, k.Genre, k.Sort, k.Order, k.Artist, k.Reset},
		{k.Prev, k.Next, k.Create, k.Edit, k.Delete, k.Help, k.Quit},
	}
}

type detailKeyMap struct {
	Close       key.Binding
	Play        key.Binding
	Preview     key.Binding
	Upload      key.Binding
	DeleteAudio key.Binding
	Edit        key.Binding
	Delete      key.Binding
}

var detailKeys = detailKeyMap{
	Close:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "close")),
	Play:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
	Preview:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "preview")),
	Upload:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "add audio")),
	DeleteAudio: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete audio")),
	Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete track")),
}

func isQuit(msg tea.KeyMsg) bool {
	return msg.String() == "ctrl+c"
}
