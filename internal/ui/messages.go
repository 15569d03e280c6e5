package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/trackshelf/internal/library"
	"github.com/olivier-w/trackshelf/internal/player"
	"github.com/olivier-w/trackshelf/internal/track"
)

type tickMsg time.Time

// tracksLoadedMsg carries the result for the query with the given key. seq
// identifies the fetch, so a reload of the same query supersedes older ones.
type tracksLoadedMsg struct {
	key  string
	seq  uint64
	page track.Page
	err  error
}

type genresLoadedMsg struct {
	genres []string
	err    error
}

type searchDebounceMsg struct {
	seq   uint64
	value string
}

// trackLoadedMsg answers a by-slug fetch for the detail view.
type trackLoadedMsg struct {
	slug  string
	track track.Track
	err   error
}

type openDetailMsg struct{ track track.Track }

type openFormMsg struct{ track *track.Track }

type playTrackMsg struct{ track track.Track }

type askConfirmMsg struct {
	message string
	intent  Intent
	trackID string
}

type formSubmittedMsg struct {
	editing bool
	track   track.Track
	err     error
}

type uploadDoneMsg struct {
	trackID string
	slug    string
	err     error
}

type audioDeletedMsg struct {
	trackID string
	slug    string
	err     error
}

type trackDeletedMsg struct {
	trackID string
	err     error
}

// audioLoadedMsg finishes a Begin on the slot named which.
type audioLoadedMsg struct {
	which   slotName
	ticket  player.Ticket
	current *library.CurrentTrack
	audio   player.Audio
	err     error
}

type playbackEndedMsg struct {
	which slotName
	seq   uint64
}

type slotName int

const (
	mainSlot slotName = iota
	previewSlot
)

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
