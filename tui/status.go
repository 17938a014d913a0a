package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing
// the current room, the game's status text, the score and the turn count.
func (m Model) renderStatusBar() string {
	a := m.engine.Attributes()

	left := " " + a.Room
	if a.Status != "" {
		left += " | " + a.Status
	}

	right := fmt.Sprintf("T:%d ", a.Turns)
	if a.MaxScore > 0 {
		candidate := fmt.Sprintf("Score: %d/%d | T:%d ", a.Score, a.MaxScore, a.Turns)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
