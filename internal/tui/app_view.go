package tui

import (
	"fmt"
	"strings"

	"todo-cli/internal/app"
	"todo-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if ms, ok := m.headModal(); ok {
		return m.place(m.renderModal(ms))
	}
	if m.booting {
		return m.place(styleMuted().Render("Checking session…"))
	}
	switch m.view {
	case app.ViewLogin:
		return m.place(m.renderForm(m.login, "enter: next/submit   tab: move   ctrl+r: register   esc: back"))
	case app.ViewRegister:
		return m.place(m.renderForm(m.register, "enter: next/submit   tab: move   ctrl+l: log in   esc: back"))
	case app.ViewMainApp:
		if m.popupOpen {
			return m.place(renderModalBox(m.width, m.addTask.title,
				m.addTask.view(modalBodyWidth(m.width))+"\n\n"+
					styleMuted().Render("enter: next/add   tab: move   esc: close")))
		}
		return m.renderMain()
	}
	return m.place(m.renderLanding())
}

func (m appModel) place(s string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m appModel) renderModal(ms modalState) string {
	switch ms.kind {
	case modalConfirm:
		return renderConfirmModal(m.width, ms.title, ms.message, "Yes", "No", ms.confirmFocus)
	case modalPrompt:
		in := m.prompt
		in.Width = modalBodyWidth(m.width) - 3
		return renderPromptModal(m.width, ms.title, in.View())
	}
	return renderAlertModal(m.width, ms.title, ms.message)
}

func (m appModel) renderLanding() string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		styleButton(m.landingFocus == landingLogin).Render("Log in"),
		"  ",
		styleButton(m.landingFocus == landingRegister).Render("Register"),
	)
	return strings.Join([]string{
		styleHeading().Render("Todo"),
		styleMuted().Render("Keep track of what is left to do."),
		"",
		buttons,
		"",
		styleMuted().Render("l: log in   r: register   q: quit"),
	}, "\n")
}

func (m appModel) renderForm(f *formModel, help string) string {
	bodyW := modalBodyWidth(m.width)
	parts := []string{f.view(bodyW), "", styleMuted().Width(bodyW).Render(help)}
	if m.notice != "" {
		parts = append([]string{lipgloss.NewStyle().Foreground(colorDone).Width(bodyW).Render(m.notice), ""}, parts...)
	}
	return renderModalBox(m.width, f.title, strings.Join(parts, "\n"))
}

func (m appModel) renderMain() string {
	header := styleHeading().Render("Todo")
	if m.profile != "" {
		header += styleMuted().Render("  " + m.profile)
	}
	bodyH := m.height - 3
	if bodyH < 1 {
		bodyH = 1
	}

	leftW, rightW := splitWidths(m.width)
	var body string
	switch {
	case rightW == 0 && m.pane == paneGrouped:
		body = normalizePane(m.renderGrouped(m.width, bodyH), m.width, bodyH)
	case rightW == 0:
		body = normalizePane(m.renderFlat(), m.width, bodyH)
	default:
		left := normalizePane(m.renderFlat(), leftW, bodyH)
		sep := normalizePane(strings.Repeat("│\n", bodyH), 1, bodyH)
		right := normalizePane(m.renderGrouped(rightW, bodyH), rightW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
	}

	status := m.notice
	if m.busy > 0 {
		status = "working…"
	}
	help := "space: toggle  e: edit  d: delete  a: add  tab: pane  1/2: fold  p: preview  r: refresh  L: log out  q: quit"
	return strings.Join([]string{
		fitWidth(header, m.width),
		body,
		fitWidth(styleMuted().Render(status), m.width),
		fitWidth(styleMuted().Render(help), m.width),
	}, "\n")
}

func (m appModel) renderFlat() string {
	title := sectionTitle("All tasks", len(m.flat.Items()), m.pane == paneFlat)
	if len(m.flat.Items()) == 0 {
		return title + "\n" + styleMuted().Render("No tasks yet. Press a to add one.")
	}
	return title + "\n" + m.flat.View()
}

func sectionTitle(name string, n int, active bool) string {
	st := styleMuted().Bold(true)
	if active {
		st = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	}
	return st.Render(fmt.Sprintf("%s (%d)", name, n))
}

func (m appModel) renderGrouped(width, height int) string {
	active := m.pane == paneGrouped
	rows := m.groupRows()
	var cur groupRow
	hasCur := active && m.groupCursor >= 0 && m.groupCursor < len(rows)
	if hasCur {
		cur = rows[m.groupCursor]
	}

	var lines []string
	section := func(s groupSection, name string, tasks []model.Task) {
		marker := "▾ "
		if m.sectionCollapsed(s) {
			marker = "▸ "
		}
		lines = append(lines, sectionTitle(marker+name, len(tasks), active))
		if m.sectionCollapsed(s) {
			return
		}
		for i, t := range tasks {
			ln := fitWidth(" "+checkbox(t.Checked())+" "+t.Title, width)
			if hasCur && cur.section == s && cur.index == i {
				ln = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true).Render(ln)
			}
			lines = append(lines, ln)
		}
	}
	section(sectionInProgress, "In progress", m.inProgress)
	lines = append(lines, "")
	section(sectionCompleted, "Completed", m.completed)

	if m.showPreview {
		if t, ok := m.selectedTask(); ok {
			previewH := height - len(lines) - 2
			if previewH > 2 {
				preview := renderMarkdown(t.Description, width-1)
				if preview == "" {
					preview = styleMuted().Render("(no description)")
				}
				lines = append(lines, "", styleMuted().Render(strings.Repeat("─", width)))
				lines = append(lines, strings.Split(normalizePane(preview, width, previewH), "\n")...)
			}
		}
	}
	return strings.Join(lines, "\n")
}
