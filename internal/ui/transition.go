package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

type transitionPhase int

const (
	phaseClosed transitionPhase = iota
	phaseOpen
	phaseClosing
)

const frameInterval = time.Second / 60

// transitionFrameMsg advances the transition named id. Frames from an earlier
// generation belong to a previous open and are dropped.
type transitionFrameMsg struct {
	id  string
	gen uint64
}

// transition animates a component between closed (0) and open (1). Closing is
// two-phase: the component stays visible while the spring settles and only
// then reports itself closed.
type transition struct {
	id     string
	phase  transitionPhase
	gen    uint64
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newTransition(id string) transition {
	return transition{
		id:     id,
		spring: harmonica.NewSpring(harmonica.FPS(60), 8.0, 1.0),
	}
}

func (t transition) frame() tea.Cmd {
	id, gen := t.id, t.gen
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return transitionFrameMsg{id: id, gen: gen}
	})
}

// Open starts (or restarts) the opening animation.
func (t *transition) Open() tea.Cmd {
	t.gen++
	t.phase = phaseOpen
	return t.frame()
}

// Close starts the closing animation. Closing a closed or closing component
// does nothing.
func (t *transition) Close() tea.Cmd {
	if t.phase != phaseOpen {
		return nil
	}
	t.phase = phaseClosing
	t.gen++
	return t.frame()
}

// Update steps the spring. closed is true exactly once, on the frame that
// finishes a close.
func (t *transition) Update(msg transitionFrameMsg) (closed bool, cmd tea.Cmd) {
	if msg.id != t.id || msg.gen != t.gen || t.phase == phaseClosed {
		return false, nil
	}

	target := 1.0
	if t.phase == phaseClosing {
		target = 0
	}
	t.pos, t.vel = t.spring.Update(t.pos, t.vel, target)

	if t.phase == phaseClosing && t.pos <= 0.02 {
		t.pos, t.vel = 0, 0
		t.phase = phaseClosed
		return true, nil
	}
	if t.phase == phaseOpen && t.pos >= 0.98 && abs(t.vel) < 0.05 {
		t.pos, t.vel = 1, 0
		return false, nil
	}
	return false, t.frame()
}

// Visible reports whether the component should be drawn.
func (t transition) Visible() bool { return t.phase != phaseClosed }

// Closing reports whether a close is in progress.
func (t transition) Closing() bool { return t.phase == phaseClosing }

// IsOpen reports whether the component is open or still opening.
func (t transition) IsOpen() bool { return t.phase == phaseOpen }

// Progress is 0 when closed and 1 when fully open.
func (t transition) Progress() float64 { return max(0, min(t.pos, 1)) }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
