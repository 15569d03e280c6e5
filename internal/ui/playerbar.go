package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/trackshelf/internal/player"
)

// playerBarLines is the height of the rendered player bar. The progress bar
// is its last line.
const playerBarLines = 2

// volumeControl is implemented by audio that supports volume changes.
type volumeControl interface {
	Volume() float64
	AdjustVolume(delta float64)
}

// playerBar renders the global slot: what is loaded, progress and volume.
type playerBar struct {
	elapsed  time.Duration
	duration time.Duration
	volume   float64
	spinner  spinner.Model
}

func newPlayerBar() playerBar {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = selectedStyle
	return playerBar{volume: -1, spinner: sp}
}

// Sync copies position and volume from the slot's audio.
func (b *playerBar) Sync(s *player.Slot) {
	a := s.Audio()
	if a == nil {
		b.elapsed, b.duration, b.volume = 0, 0, -1
		return
	}
	b.elapsed = a.Position()
	b.duration = a.Duration()
	if v, ok := a.(volumeControl); ok {
		b.volume = v.Volume()
	}
}

func (b *playerBar) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return cmd
}

// barLayout returns the first column and width of the progress bar for a
// terminal width cells wide.
func (b playerBar) barLayout(width int) (start, barWidth int) {
	w := width
	if w < 30 {
		w = 50
	}
	el := formatDuration(b.elapsed)
	du := formatDuration(b.duration)
	barWidth = max(w-len(el)-len(du)-6, 10)
	start = 2 + len(el) + 1
	return start, barWidth
}

// SeekFraction maps a click at column x to a position in the track.
func (b playerBar) SeekFraction(x, width int) (float64, bool) {
	start, barWidth := b.barLayout(width)
	return barFraction(x, start, barWidth)
}

func (b playerBar) View(s *player.Slot, loading player.Track, width int) string {
	w := width
	if w < 30 {
		w = 50
	}

	var left string
	switch s.State() {
	case player.Loading:
		left = b.spinner.View() + " " + statusStyle.Render("Loading "+trackLabel(loading)+"...")
	case player.Playing, player.Paused:
		cur, _ := s.Current()
		icon := "▶"
		if s.State() == player.Paused {
			icon = "❚❚"
		}
		left = statusStyle.Render(icon+"  ") + titleStyle.Render(truncate(trackLabel(cur), w-20))
	default:
		left = placeholderStyle.Render("Nothing playing")
	}

	right := ""
	if b.volume >= 0 {
		right = renderVolumePercent(b.volume)
	}
	gap := max(w-lipgloss.Width(left)-len(right)-4, 2)
	status := left + spaces(gap) + statusStyle.Render(right)

	_, barWidth := b.barLayout(width)
	elapsed := formatDuration(b.elapsed)
	bar := renderProgressBar(b.elapsed.Seconds(), b.duration.Seconds(), barWidth)
	if s.State() != player.Playing && s.State() != player.Paused {
		bar = disabledStyle.Render(bar)
	}
	progress := fmt.Sprintf("%s %s %s",
		timeStyle.Render(elapsed), bar, timeStyle.Render(formatDuration(b.duration)))

	return "  " + status + "\n  " + progress
}

func trackLabel(t player.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " — " + t.Title
}

// formatDuration renders d as m:ss, or h:mm:ss once it reaches an hour.
func formatDuration(d time.Duration) string {
	total := int(max(d, 0) / time.Second)
	h, m, sec := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
