package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Bold(true)

	styleShout = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHeading
	kindShout
	kindSystem
)

// classifyLine determines what kind of story line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return kindSystem
	case isShout(trimmed):
		return kindShout
	case isHeading(trimmed):
		return kindHeading
	default:
		return kindNarrative
	}
}

// isShout reports whether line has letters and all of them are upper case,
// like "YOU HAVE WON !!!".
func isShout(line string) bool {
	letters := 0
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			letters++
		}
	}
	return letters > 1
}

// isHeading reports whether line looks like a title: short, capitalized,
// and without closing punctuation.
func isHeading(line string) bool {
	if line == "" || len(line) > 40 {
		return false
	}
	if c := line[0]; c < 'A' || c > 'Z' {
		return false
	}
	switch line[len(line)-1] {
	case '.', '!', '?', ',', ':', ';', '"', '\'':
		return false
	}
	for _, w := range strings.Fields(line) {
		if c := w[0]; len(w) > 3 && c >= 'a' && c <= 'z' {
			return false
		}
	}
	return true
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHeading:
		return styleHeading.Render(line)
	case kindShout:
		return styleShout.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}
