package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func modalWidth(screenW int) int {
	w := screenW - 8
	if w > 72 {
		w = 72
	}
	if w < 28 {
		w = 28
	}
	return w
}

// modalBodyWidth is the usable text width inside renderModalBox.
func modalBodyWidth(screenW int) int {
	return modalWidth(screenW) - 6
}

func renderModalBox(screenW int, title string, content string) string {
	w := modalWidth(screenW)
	bodyW := modalBodyWidth(screenW)
	head := styleHeading().Width(bodyW).Render(title)
	inner := lipgloss.NewStyle().Width(bodyW).Render(head + "\n\n" + content)
	return lipgloss.NewStyle().
		Width(w-2).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Foreground(colorSurfaceFg).
		Render(inner)
}

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	// No borders on the buttons: nested bordered components render background
	// artifacts in some terminals.
	confirm := styleButton(focus == confirmFocusConfirm).Render(confirmLabel)
	cancel := styleButton(focus == confirmFocusCancel).Render(cancelLabel)
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

func renderAlertModal(width int, title string, body string) string {
	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		styleButton(true).Render("OK"),
		"",
		styleMuted().Width(bodyW).Render("enter/esc: dismiss"),
	}, "\n")
	return renderModalBox(width, title, content)
}

func renderPromptModal(width int, label string, inputView string) string {
	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		renderInputLine(bodyW, inputView),
		"",
		styleMuted().Width(bodyW).Render("enter: save   esc: cancel"),
	}, "\n")
	return renderModalBox(width, label, content)
}
