package ui

import "github.com/charmbracelet/lipgloss"

var (
	subtle  = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}
	muted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"}
	strong  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}
	accent  = lipgloss.AdaptiveColor{Light: "#D2691E", Dark: "#FF8C00"}
	danger  = lipgloss.AdaptiveColor{Light: "#B22222", Dark: "#FF5F5F"}
	success = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#5FD787"}
	info    = lipgloss.AdaptiveColor{Light: "#1E6FB8", Dark: "#5FAFFF"}
	warning = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD75F"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(strong)

	artistStyle = lipgloss.NewStyle().
			Foreground(muted)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#888888"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	helpStyle = lipgloss.NewStyle().
			Foreground(subtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	disabledStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Faint(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(subtle)

	genreStyle = lipgloss.NewStyle().
			Foreground(muted).
			Border(lipgloss.RoundedBorder(), false, true).
			BorderForeground(subtle).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(danger)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 2)

	confirmStyle = modalStyle.
			BorderForeground(danger).
			Align(lipgloss.Center)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(muted)

	activeButtonStyle = buttonStyle.
				Bold(true).
				Foreground(strong).
				Background(lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#444444"})

	toastSuccessStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(success).
				Padding(0, 1)

	toastErrorStyle = toastSuccessStyle.
			BorderForeground(danger)

	toastInfoStyle = toastSuccessStyle.
			BorderForeground(info)

	toastWarningStyle = toastSuccessStyle.
				BorderForeground(warning)
)
