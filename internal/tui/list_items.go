package tui

import (
	"fmt"
	"io"
	"strings"

	"todo-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return i.task.Description }

func taskItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// firstLine is the first non-empty line of a description, for one-row summaries.
func firstLine(s string) string {
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			return ln
		}
	}
	return ""
}

// taskDelegate renders a task as a checkbox+title row over a muted description row.
type taskDelegate struct {
	active bool
}

func (d taskDelegate) Height() int  { return 2 }
func (d taskDelegate) Spacing() int { return 1 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	contentW := m.Width()
	if !ok || contentW < 8 {
		fmt.Fprint(w, "")
		return
	}

	title := checkbox(it.task.Checked()) + " " + it.task.Title
	desc := "    " + firstLine(it.task.Description)

	titleStyle := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	if it.task.Checked() {
		titleStyle = titleStyle.Foreground(colorDone)
	}
	descStyle := styleMuted()
	if index == m.Index() && d.active {
		titleStyle = titleStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
		descStyle = descStyle.Background(colorSelectedBg)
	}
	fmt.Fprint(w, titleStyle.Render(fitWidth(title, contentW))+"\n"+descStyle.Render(fitWidth(desc, contentW)))
}
