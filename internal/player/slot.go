package player

import (
	"context"
	"errors"
	"time"
)

// Audio is the playback handle held by a Slot. *Player implements it.
type Audio interface {
	TogglePause()
	Pause()
	Paused() bool
	Position() time.Duration
	Duration() time.Duration
	SeekFraction(f float64) error
	Done() <-chan struct{}
	Close()
}

// Releaser frees the local copy of the audio once it is no longer played.
type Releaser interface {
	Release()
}

// State is the playback state of the Slot.
type State int

const (
	Empty State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "empty"
	}
}

// Track describes what the slot holds.
type Track struct {
	ID     string
	Title  string
	Artist string
}

// Ticket identifies one load. Its context is canceled as soon as a newer load
// begins or the slot is stopped.
type Ticket struct {
	Seq uint64
	Ctx context.Context
}

// Slot is the single global playback slot. At most one load is in flight and
// at most one track is loaded. Not safe for concurrent use; the UI owns it.
type Slot struct {
	parent context.Context
	state  State
	seq    uint64
	cancel context.CancelFunc

	loadingID string
	track     Track
	src       Releaser
	audio     Audio
}

// NewSlot creates an empty slot whose loads derive from ctx.
func NewSlot(ctx context.Context) *Slot {
	return &Slot{parent: ctx}
}

// Begin starts loading the track with the given id. Any in-flight load is
// canceled and the current audio is stopped and released.
func (s *Slot) Begin(id string) Ticket {
	s.reset()
	s.seq++
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.state = Loading
	s.loadingID = id
	return Ticket{Seq: s.seq, Ctx: ctx}
}

// Commit installs the result of the load identified by t. A ticket that is no
// longer current is refused and whatever it carried is released.
func (s *Slot) Commit(t Ticket, tr Track, src Releaser, a Audio) bool {
	if t.Seq != s.seq || s.state != Loading {
		if a != nil {
			a.Close()
		}
		if src != nil {
			src.Release()
		}
		return false
	}
	s.state = Playing
	s.loadingID = ""
	s.track = tr
	s.src = src
	s.audio = a
	return true
}

// Fail ends the load identified by t. It reports whether err should be shown
// to the user: stale tickets and cancellations stay silent.
func (s *Slot) Fail(t Ticket, err error) bool {
	if t.Seq != s.seq || s.state != Loading {
		return false
	}
	canceled := errors.Is(err, context.Canceled) || t.Ctx.Err() != nil
	s.reset()
	return !canceled
}

// Toggle switches between playing and paused.
func (s *Slot) Toggle() {
	switch s.state {
	case Playing:
		s.audio.TogglePause()
		s.state = Paused
	case Paused:
		s.audio.TogglePause()
		s.state = Playing
	}
}

// Pause pauses playback if something is playing.
func (s *Slot) Pause() {
	if s.state == Playing {
		s.audio.Pause()
		s.state = Paused
	}
}

// Seek moves to fraction f of the current track. It does nothing while the
// slot is empty or loading.
func (s *Slot) Seek(f float64) error {
	if s.state != Playing && s.state != Paused {
		return nil
	}
	return s.audio.SeekFraction(f)
}

// End handles natural end of playback for the load seq. Stale notifications
// are ignored.
func (s *Slot) End(seq uint64) bool {
	if seq != s.seq || (s.state != Playing && s.state != Paused) {
		return false
	}
	s.reset()
	return true
}

// Stop cancels any load, stops playback and empties the slot.
func (s *Slot) Stop() {
	s.reset()
}

func (s *Slot) reset() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.audio != nil {
		s.audio.Close()
		s.audio = nil
	}
	if s.src != nil {
		s.src.Release()
		s.src = nil
	}
	s.state = Empty
	s.loadingID = ""
	s.track = Track{}
}

// State returns the playback state.
func (s *Slot) State() State { return s.state }

// Seq returns the sequence number of the latest load.
func (s *Slot) Seq() uint64 { return s.seq }

// LoadingID returns the id of the track being loaded, or "".
func (s *Slot) LoadingID() string { return s.loadingID }

// Current returns the loaded track, if any.
func (s *Slot) Current() (Track, bool) {
	if s.state != Playing && s.state != Paused {
		return Track{}, false
	}
	return s.track, true
}

// Audio returns the loaded audio, or nil.
func (s *Slot) Audio() Audio { return s.audio }

// IsPlaying reports whether the track with the given id is loaded and not
// paused.
func (s *Slot) IsPlaying(id string) bool {
	return s.state == Playing && s.track.ID == id
}
