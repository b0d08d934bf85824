package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/session"
	"github.com/OranPie/rulatro/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleHandBar = lipgloss.NewStyle().
			Background(lipgloss.Color("234"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleState = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	styleScore = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleCardRed = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	styleCardBlack = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleCardIndex = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindState lineKind = iota
	kindEvent
	kindScore
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Error:"):
		return kindError
	case strings.HasPrefix(line, "= "), strings.HasPrefix(line, "  "),
		strings.Contains(line, " chips x "):
		return kindScore
	case isEventLine(line):
		return kindEvent
	default:
		return kindState
	}
}

// isEventLine matches the "type key=value" shape of rendered events.
func isEventLine(line string) bool {
	word, _, _ := strings.Cut(line, " ")
	if !strings.Contains(word, "_") {
		return false
	}
	for _, r := range word {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindEvent:
		return styleEvent.Render(line)
	case kindScore:
		return styleScore.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleState.Render(line)
	}
}

// styledCard renders a card code in its suit colour. Stone cards have no
// suit and render black.
func styledCard(c types.Card) string {
	code := session.CardCode(c)
	if c.Enhancement != types.EnhancementStone && hand.IsRed(c.Suit) {
		return styleCardRed.Render(code)
	}
	return styleCardBlack.Render(code)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
