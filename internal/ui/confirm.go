package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// Intent says what a confirmation is for.
type Intent int

const (
	IntentDeleteTrack Intent = iota
	IntentDeleteAudio
)

// ConfirmRequest asks the user a yes/no question on behalf of a track.
type ConfirmRequest struct {
	ID      uuid.UUID
	Message string
	Intent  Intent
	TrackID string
}

// ConfirmResultMsg answers exactly one ConfirmRequest.
type ConfirmResultMsg struct {
	ID        uuid.UUID
	Confirmed bool
	Intent    Intent
	TrackID   string
}

type confirmDialog struct {
	req      *ConfirmRequest
	answered bool
	yes      bool // highlighted button
	fade     transition
}

func newConfirmDialog() confirmDialog {
	return confirmDialog{fade: newTransition("confirm")}
}

// Ask opens the dialog for a new request, replacing any unanswered one.
func (c *confirmDialog) Ask(message string, intent Intent, trackID string) (ConfirmRequest, tea.Cmd) {
	req := ConfirmRequest{ID: uuid.New(), Message: message, Intent: intent, TrackID: trackID}
	c.req = &req
	c.answered = false
	c.yes = false
	return req, c.fade.Open()
}

// Active reports whether the dialog takes keyboard input.
func (c confirmDialog) Active() bool {
	return c.req != nil && !c.answered
}

func (c confirmDialog) Visible() bool {
	return c.req != nil && c.fade.Visible()
}

func (c *confirmDialog) answer(confirmed bool) tea.Cmd {
	c.answered = true
	req := *c.req
	result := func() tea.Msg {
		return ConfirmResultMsg{ID: req.ID, Confirmed: confirmed, Intent: req.Intent, TrackID: req.TrackID}
	}
	return tea.Batch(result, c.fade.Close())
}

func (c *confirmDialog) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case transitionFrameMsg:
		closed, cmd := c.fade.Update(msg)
		if closed {
			c.req = nil
			c.answered = false
		}
		return cmd
	case tea.KeyMsg:
		if !c.Active() {
			return nil
		}
		switch msg.String() {
		case "y":
			return c.answer(true)
		case "n", "esc", "q":
			return c.answer(false)
		case "left", "right", "tab", "h", "l":
			c.yes = !c.yes
		case "enter":
			return c.answer(c.yes)
		}
	}
	return nil
}

func (c confirmDialog) View() string {
	if !c.Visible() {
		return ""
	}
	yes, no := buttonStyle, buttonStyle
	if c.yes {
		yes = activeButtonStyle
	} else {
		no = activeButtonStyle
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		c.req.Message,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No")),
	)
	style := confirmStyle
	if c.fade.Closing() {
		style = style.Faint(true)
	}
	return style.Render(body)
}
