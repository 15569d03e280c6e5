package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/trackshelf/internal/api"
	"github.com/olivier-w/trackshelf/internal/track"
)

type listState int

const (
	listIdle listState = iota
	listLoading
	listSuccess
	listError
)

// placeholderRows is how many skeleton rows are drawn while loading.
const placeholderRows = 3

type listView struct {
	lib    Library
	query  track.Query
	state  listState
	page   track.Page
	err    string
	genres []string
	cursor int
	seq    uint64

	search    textinput.Model
	debounce  time.Duration
	searchSeq uint64
	torndown  bool
}

func newListView(lib Library, q track.Query, debounce time.Duration) listView {
	ti := textinput.New()
	ti.Placeholder = "title, artist or album"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 32
	ti.SetValue(q.Search)
	return listView{lib: lib, query: q, search: ti, debounce: debounce}
}

// SetQuery switches to q and fetches it. A query whose key is already shown
// or loading does not fetch again.
func (l *listView) SetQuery(q track.Query) tea.Cmd {
	if q.Key() == l.query.Key() && l.state != listIdle {
		return nil
	}
	l.query = q
	if !l.search.Focused() {
		l.search.SetValue(q.Search)
	}
	return l.fetch()
}

// Reload refetches the current query, e.g. after a write.
func (l *listView) Reload() tea.Cmd {
	return l.fetch()
}

func (l *listView) fetch() tea.Cmd {
	l.state = listLoading
	l.err = ""
	l.seq++
	lib, q, seq := l.lib, l.query, l.seq
	return func() tea.Msg {
		page, err := lib.Tracks(context.Background(), q)
		return tracksLoadedMsg{key: q.Key(), seq: seq, page: page, err: err}
	}
}

// current reports whether msg answers the most recently issued fetch.
func (l listView) current(msg tracksLoadedMsg) bool {
	return msg.seq == l.seq && msg.key == l.query.Key()
}

func (l *listView) loadGenres() tea.Cmd {
	lib := l.lib
	return func() tea.Msg {
		genres, err := lib.Genres(context.Background())
		return genresLoadedMsg{genres: genres, err: err}
	}
}

// Teardown stops pending debounced searches from firing.
func (l *listView) Teardown() {
	l.searchSeq++
	l.torndown = true
}

func (l listView) Loading() bool { return l.state == listLoading }

func (l listView) Searching() bool { return l.search.Focused() }

func (l listView) canPrev() bool {
	return !l.Loading() && l.query.Page > 1
}

func (l listView) canNext() bool {
	return !l.Loading() && l.query.Page < l.page.Meta.TotalPages
}

func (l listView) selected() (track.Track, bool) {
	if l.state != listSuccess || l.cursor < 0 || l.cursor >= len(l.page.Tracks) {
		return track.Track{}, false
	}
	return l.page.Tracks[l.cursor], true
}

func (l *listView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tracksLoadedMsg:
		if !l.current(msg) {
			return nil
		}
		if msg.err != nil {
			if api.IsCanceled(msg.err) {
				return nil
			}
			l.state = listError
			l.err = api.Message(msg.err)
			return nil
		}
		l.state = listSuccess
		l.page = msg.page
		l.cursor = max(0, min(l.cursor, len(l.page.Tracks)-1))
		return nil

	case genresLoadedMsg:
		if msg.err == nil {
			l.genres = msg.genres
		}
		return nil

	case searchDebounceMsg:
		if msg.seq != l.searchSeq || l.torndown || msg.value == l.query.Search {
			return nil
		}
		return l.SetQuery(l.query.WithSearch(msg.value))

	case tea.KeyMsg:
		if l.search.Focused() {
			return l.updateSearch(msg)
		}
		return l.updateKeys(msg)
	}
	return nil
}

func (l *listView) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		l.search.Blur()
		return nil
	case "enter":
		// Commit right away instead of waiting for the debounce.
		l.search.Blur()
		l.searchSeq++
		return l.SetQuery(l.query.WithSearch(strings.TrimSpace(l.search.Value())))
	}

	before := l.search.Value()
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	if l.search.Value() == before {
		return cmd
	}
	l.searchSeq++
	seq, value := l.searchSeq, strings.TrimSpace(l.search.Value())
	debounce := tea.Tick(l.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq, value: value}
	})
	return tea.Batch(cmd, debounce)
}

func (l *listView) updateKeys(msg tea.KeyMsg) tea.Cmd {
	t, hasTrack := l.selected()

	switch {
	case key.Matches(msg, listKeys.Up):
		l.cursor = max(0, l.cursor-1)
	case key.Matches(msg, listKeys.Down):
		l.cursor = max(0, min(l.cursor+1, len(l.page.Tracks)-1))
	case key.Matches(msg, listKeys.Search):
		return l.search.Focus()

	case key.Matches(msg, listKeys.Genre):
		if l.Loading() || len(l.genres) == 0 {
			return nil
		}
		options := append([]string{""}, l.genres...)
		i := slices.Index(options, l.query.Genre)
		return l.SetQuery(l.query.WithGenre(options[(i+1)%len(options)]))
	case key.Matches(msg, listKeys.Sort):
		if l.Loading() {
			return nil
		}
		return l.SetQuery(l.query.WithSort(track.NextSort(l.query.Sort)))
	case key.Matches(msg, listKeys.Order):
		if l.Loading() {
			return nil
		}
		return l.SetQuery(l.query.WithOrder(l.query.Order.Toggle()))
	case key.Matches(msg, listKeys.Artist):
		if l.Loading() {
			return nil
		}
		if l.query.Artist != "" {
			return l.SetQuery(l.query.WithArtist(""))
		}
		if hasTrack {
			return l.SetQuery(l.query.WithArtist(t.Artist))
		}
	case key.Matches(msg, listKeys.Reset):
		if l.Loading() {
			return nil
		}
		l.searchSeq++
		l.search.SetValue("")
		return l.SetQuery(track.DefaultQuery())
	case key.Matches(msg, listKeys.Prev):
		if l.canPrev() {
			return l.SetQuery(l.query.WithPage(l.query.Page - 1))
		}
	case key.Matches(msg, listKeys.Next):
		if l.canNext() {
			return l.SetQuery(l.query.WithPage(l.query.Page + 1))
		}

	case key.Matches(msg, listKeys.Create):
		return emit(openFormMsg{})
	case !hasTrack:
		return nil
	case key.Matches(msg, listKeys.Open):
		return emit(openDetailMsg{track: t})
	case key.Matches(msg, listKeys.Play):
		if t.HasAudio() {
			return emit(playTrackMsg{track: t})
		}
	case key.Matches(msg, listKeys.Edit):
		return emit(openFormMsg{track: &t})
	case key.Matches(msg, listKeys.Delete):
		return emit(askConfirmMsg{
			message: "Do you really want to delete this track?",
			intent:  IntentDeleteTrack,
			trackID: t.ID,
		})
	}
	return nil
}

func (l listView) View(width int, playingID, uploadingID string) string {
	var b strings.Builder

	total := ""
	if l.state == listSuccess {
		total = artistStyle.Render(fmt.Sprintf("  %d tracks", l.page.Meta.Total))
	}
	b.WriteString("  " + headerStyle.Render("Tracks") + total + "\n\n")
	b.WriteString("  " + l.filterLine() + "\n")
	searchLabel := statusStyle.Render("Search: ")
	if l.search.Focused() {
		searchLabel = selectedStyle.Render("Search: ")
	}
	b.WriteString("  " + searchLabel + l.search.View() + "\n\n")

	switch l.state {
	case listIdle, listLoading:
		for range placeholderRows {
			b.WriteString("  " + placeholderRow(width-4) + "\n")
		}
	case listError:
		b.WriteString("  " + errorStyle.Render("❌ "+l.err) + "\n")
	case listSuccess:
		if len(l.page.Tracks) == 0 {
			b.WriteString("  " + placeholderStyle.Render("No tracks found") + "\n")
		}
		for i, t := range l.page.Tracks {
			b.WriteString(l.row(i, t, width, playingID, uploadingID) + "\n")
		}
	}

	b.WriteString("\n  " + l.pagination() + "\n")
	return b.String()
}

func (l listView) filterLine() string {
	style := statusStyle
	if l.Loading() {
		style = disabledStyle
	}
	genre := l.query.Genre
	if genre == "" {
		genre = "All"
	}
	arrow := "↓"
	if l.query.Order == track.Asc {
		arrow = "↑"
	}
	parts := []string{
		"Genre: " + genre,
		"Sort: " + track.SortLabel(l.query.Sort) + " " + arrow,
	}
	if l.query.Artist != "" {
		parts = append(parts, "Artist: "+l.query.Artist)
	}
	return style.Render(strings.Join(parts, "  │  "))
}

func (l listView) row(i int, t track.Track, width int, playingID, uploadingID string) string {
	cursor := "  "
	titleS := titleStyle
	if i == l.cursor {
		cursor = selectedStyle.Render("› ")
		titleS = selectedStyle
	}

	icon := " "
	switch {
	case t.ID == uploadingID:
		icon = "⟳"
	case t.ID == playingID:
		icon = "▶"
	case t.HasAudio():
		icon = "♪"
	}

	byline := t.Artist
	if t.Album != "" {
		byline += " · " + t.Album
	}
	line := fmt.Sprintf("%s %s %s", icon, titleS.Render(truncate(t.Title, 40)), artistStyle.Render(truncate(byline, 40)))
	if len(t.Genres) > 0 && width > 80 {
		line += "  " + helpStyle.Render(strings.Join(t.Genres, ", "))
	}
	return "  " + cursor + line
}

func (l listView) pagination() string {
	prev, next := statusStyle.Render("‹ prev"), statusStyle.Render("next ›")
	if !l.canPrev() {
		prev = disabledStyle.Render("‹ prev")
	}
	if !l.canNext() {
		next = disabledStyle.Render("next ›")
	}
	pages := max(1, l.page.Meta.TotalPages)
	return fmt.Sprintf("%s  %s  %s", prev, timeStyle.Render(fmt.Sprintf("Page %d of %d", l.query.Page, pages)), next)
}
