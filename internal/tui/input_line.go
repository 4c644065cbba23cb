package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a text input as one padded line of exactly bodyW columns.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// Newlines in the view would wrap the line and look like inserted text.
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate styling so a cut sequence cannot bleed into the next line.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// renderField is a labelled input with its inline error, if any.
func renderField(bodyW int, label string, inputView string, focused bool, errMsg string) string {
	lbl := styleMuted().Render(label)
	if focused {
		lbl = lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(label)
	}
	lines := []string{lbl, renderInputLine(bodyW, inputView)}
	if strings.TrimSpace(errMsg) != "" {
		lines = append(lines, styleError().Width(bodyW).Render(errMsg))
	}
	return strings.Join(lines, "\n")
}
