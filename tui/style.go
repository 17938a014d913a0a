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

	styleRoomDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

const alsoHerePrefix = "Also here is "

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindRoomDesc lineKind = iota
	kindAlsoHere
	kindExits
	kindDialogue
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, alsoHerePrefix):
		return kindAlsoHere
	case strings.HasPrefix(line, "There is an exit"),
		strings.HasPrefix(line, "There are exits"):
		return kindExits
	case strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "I don't"),
		strings.HasPrefix(line, "You see no such thing"),
		strings.HasPrefix(line, "Sorry, I didn't understand"):
		return kindError
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindRoomDesc
	}
}

// containsQuotedSpeech checks if a line contains dialogue in single or
// double quotes.
func containsQuotedSpeech(line string) bool {
	var quote rune
	quoteLen := 0
	for _, r := range line {
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote, quoteLen = r, 0
		case r == quote:
			if quoteLen > 5 {
				return true
			}
			quote = 0
		case quote != 0:
			quoteLen++
		}
	}
	return false
}

// baseStyle is the style a line of the given kind starts from.
func baseStyle(kind lineKind) lipgloss.Style {
	switch kind {
	case kindExits:
		return styleExits
	case kindDialogue:
		return styleDialogue
	case kindSystem:
		return styleSystem
	case kindError:
		return styleError
	case kindTrace:
		return styleTrace
	default:
		return styleRoomDesc
	}
}

// textStyle is the emphasis story tags put on a run of text.
type textStyle struct {
	bold, italic, underline bool
}

func (s textStyle) apply(base lipgloss.Style) lipgloss.Style {
	if s.bold {
		base = base.Bold(true)
	}
	if s.italic {
		base = base.Italic(true)
	}
	if s.underline {
		base = base.Underline(true)
	}
	return base
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
