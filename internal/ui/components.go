package ui

import (
	"fmt"
	"strings"
)

// renderProgressBar draws a bar exactly width cells wide.
func renderProgressBar(elapsed, total float64, width int) string {
	width = max(width, 10)
	var ratio float64
	if total > 0 {
		ratio = max(0, min(elapsed/total, 1))
	}
	filled := int(ratio * float64(width))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// barFraction maps a column inside a bar starting at start to a 0..1 position.
func barFraction(x, start, width int) (float64, bool) {
	if width <= 0 || x < start || x >= start+width {
		return 0, false
	}
	return float64(x-start) / float64(width), true
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func placeholderRow(width int) string {
	return placeholderStyle.Render(strings.Repeat("░", max(10, min(width, 48))))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func spaces(n int) string {
	return strings.Repeat(" ", max(0, n))
}
