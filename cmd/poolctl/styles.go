package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	// Colors
	freeColor      = lipgloss.Color("#04B575")
	allocatedColor = lipgloss.Color("#FF4B4B")
	splitColor     = lipgloss.Color("#00D7FF")
	mutedColor     = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	levelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(22)

	freeStyle      = lipgloss.NewStyle().Foreground(freeColor)
	allocatedStyle = lipgloss.NewStyle().Foreground(allocatedColor).Bold(true)
	splitStyle     = lipgloss.NewStyle().Foreground(splitColor)
	absentStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

// applyColorMode turns styling off for --no-color.
func applyColorMode() {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
