package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var (
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f46251"))
	tipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4dca7d"))
	revisionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ccbf1"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c800"))
)

func styled(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// WarnStyle styles warning prefixes
func WarnStyle(text string) string {
	return styled(warnStyle, text)
}

// TipStyle styles tip prefixes
func TipStyle(text string) string {
	return styled(tipStyle, text)
}

// RevisionStyle styles revision ids
func RevisionStyle(text string) string {
	return styled(revisionStyle, text)
}

// PendingStyle styles pending todo items
func PendingStyle(text string) string {
	return styled(pendingStyle, text)
}
