// Package render draws engine output for the terminal: the completion list
// with matched spans highlighted, the buffer with its caret, and action traces.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/engine"
)

// SelectedMarker prefixes the selected row
const SelectedMarker = "›"

var (
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("11"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	docStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	caretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))
)

// RichText renders spans with base, matched spans with the match style
func RichText(rt completion.RichText, base lipgloss.Style) string {
	var b strings.Builder
	for _, span := range rt {
		if span.Highlight {
			b.WriteString(matchStyle.Render(span.Text))
		} else {
			b.WriteString(base.Render(span.Text))
		}
	}
	return b.String()
}

// List renders one row per completion. The selected row is marked and
// doc-strings are aligned in a second column.
func List(completions []completion.Completion, selected int) string {
	if len(completions) == 0 {
		return docStyle.Render("(no completions)")
	}

	width := 0
	for _, c := range completions {
		width = max(width, lipgloss.Width(display(c).String()))
	}

	var b strings.Builder
	for i, c := range completions {
		if c.Heading != "" {
			b.WriteString("  " + headingStyle.Render(c.Heading) + "\n")
		}

		marker, base := " ", valueStyle
		if i == selected {
			marker, base = SelectedMarker, selectedStyle
		}

		text := display(c)
		b.WriteString(marker + " " + RichText(text, base))
		if len(c.DocDisplay) > 0 {
			pad := width - lipgloss.Width(text.String())
			b.WriteString(strings.Repeat(" ", pad+2) + RichText(c.DocDisplay, docStyle))
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func display(c completion.Completion) completion.RichText {
	if len(c.Display) == 0 {
		return completion.Plain(c.Value)
	}
	return c.Display
}

// Buffer renders text with a caret marker at the byte offset caret
func Buffer(text string, caret int) string {
	caret = max(0, min(caret, len(text)))
	return valueStyle.Render(text[:caret]) + caretStyle.Render("|") + valueStyle.Render(text[caret:])
}

// Action renders one engine action on a single line
func Action(a engine.Action) string {
	switch a.Kind {
	case engine.ShowList:
		return actionStyle.Render(a.Kind.String()) + " " +
			fmt.Sprintf("%d rows, selected %d", len(a.Completions), a.Selected)
	case engine.ApplyText:
		return actionStyle.Render(a.Kind.String()) + " " + Buffer(a.Text, a.Caret)
	}
	return actionStyle.Render(a.Kind.String())
}

// Actions renders a list of actions separated by ", "
func Actions(actions []engine.Action) string {
	if len(actions) == 0 {
		return docStyle.Render("-")
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = Action(a)
	}
	return strings.Join(parts, ", ")
}
