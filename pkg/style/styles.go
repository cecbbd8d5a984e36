// Package style provides the terminal styles for CLI output.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	SuccessColor = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	WarningColor = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "243", Dark: "245"}
)

// Base styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)
