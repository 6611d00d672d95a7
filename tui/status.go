package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// roomDisplayName derives a readable name from a room name.
// "great_hall" -> "Great Hall", "cloakroom" -> "Cloakroom".
func roomDisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing the
// story, the player's room, what they carry and the turn count.
func (m Model) renderStatusBar() string {
	e := m.engine

	left := " " + m.title
	if p := e.World.Player; p != nil && p.Location() != nil {
		left += " | " + roomDisplayName(p.Location().Name)
	}
	if e.Exited() {
		left += " | The End"
	}

	right := fmt.Sprintf("T:%d ", e.Turns())
	if p := e.World.Player; p != nil && p.Len() > 0 {
		items := p.Contents()
		names := make([]string, len(items))
		for i, o := range items {
			names[i] = o.Name
		}
		candidate := fmt.Sprintf("Inv: %s | T:%d ", strings.Join(names, ", "), e.Turns())
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", len(items), e.Turns())
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
