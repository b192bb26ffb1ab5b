package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styles of the text screens: menu, lobby and history.
type Theme struct {
	Title       lipgloss.Style
	Item        lipgloss.Style
	ItemActive  lipgloss.Style
	Description lipgloss.Style
	Code        lipgloss.Style
	Error       lipgloss.Style
	Footer      lipgloss.Style
}

// DefaultTheme returns the standard colours.
func DefaultTheme() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		Item:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Code: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("51")).
			Padding(0, 2),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("201")),
		Footer: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

var theme = DefaultTheme()

// centerText centres every line of text within width.
func centerText(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}

// page stacks centred blocks with a blank line between them.
func page(width int, blocks ...string) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(centerText(blk, width))
	}
	b.WriteString("\n")
	return b.String()
}
