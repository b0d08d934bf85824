package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OranPie/rulatro/engine/session"
)

// renderStatusBar produces a full-width inverted status line: the run
// summary on the left, joker and consumable counts on the right.
func (m Model) renderStatusBar() string {
	s := m.sess.Engine.State

	left := " " + session.StatusLine(s)
	right := fmt.Sprintf("J:%d C:%d ", len(s.Jokers), len(s.Consumables))
	if s.Pack != nil {
		right = "PACK OPEN | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderHandBar shows the hand as indexed, suit-coloured card codes, or
// the deck size when no cards are held.
func (m Model) renderHandBar() string {
	s := m.sess.Engine.State
	if len(s.Hand) == 0 {
		return styleHandBar.Width(m.width).Render(fmt.Sprintf(" deck %d", len(s.Deck)))
	}
	parts := make([]string, len(s.Hand))
	for i, c := range s.Hand {
		parts[i] = styleCardIndex.Render(fmt.Sprintf("%d:", i)) + styledCard(c)
	}
	return styleHandBar.Width(m.width).Render(" " + strings.Join(parts, " "))
}
