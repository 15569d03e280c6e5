package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToastDuration is how long a toast stays fully visible before fading.
const ToastDuration = 1500 * time.Millisecond

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
	toastInfo
	toastWarning
)

type toastExpiredMsg struct{ gen uint64 }

// toast shows one message at a time. A newer toast replaces the current one
// and restarts the timer.
type toast struct {
	message string
	kind    toastKind
	gen     uint64
	fade    transition
}

func newToast() toast {
	return toast{fade: newTransition("toast")}
}

func (t *toast) Show(message string, kind toastKind) tea.Cmd {
	t.message = message
	t.kind = kind
	t.gen++
	gen := t.gen
	return tea.Batch(
		t.fade.Open(),
		tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{gen: gen} }),
	)
}

func (t *toast) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case toastExpiredMsg:
		if msg.gen != t.gen {
			return nil
		}
		return t.fade.Close()
	case transitionFrameMsg:
		closed, cmd := t.fade.Update(msg)
		if closed {
			t.message = ""
		}
		return cmd
	}
	return nil
}

func (t toast) Visible() bool {
	return t.message != "" && t.fade.Visible()
}

func (t toast) View() string {
	if !t.Visible() {
		return ""
	}
	var style lipgloss.Style
	switch t.kind {
	case toastError:
		style = toastErrorStyle
	case toastInfo:
		style = toastInfoStyle
	case toastWarning:
		style = toastWarningStyle
	default:
		style = toastSuccessStyle
	}
	if t.fade.Closing() {
		style = style.Faint(true)
	}
	return style.Render(t.message)
}
