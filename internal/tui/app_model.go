package tui

import (
	"context"

	"todo-cli/internal/app"
	"todo-cli/internal/model"
	"todo-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type appModel struct {
	ctx   context.Context
	ctl   *app.Controller
	log   *zap.Logger
	store store.Store
	prefs *store.TUIPrefs

	width  int
	height int

	view app.View
	// booting is true until the first session check has picked a view.
	booting bool
	profile string

	landingFocus landingButton

	login    *formModel
	register *formModel
	addTask  *formModel

	pane        pane
	flat        list.Model
	inProgress  []model.Task
	completed   []model.Task
	groupCursor int
	showPreview bool
	popupOpen   bool

	// modals is a queue; only the head is shown and receives keys.
	modals []modalState
	prompt textinput.Model

	notice string
	// busy counts controller calls still running.
	busy int
}

func newAppModel(ctx context.Context, ctl *app.Controller, s store.Store, prefs *store.TUIPrefs, log *zap.Logger) appModel {
	if log == nil {
		log = zap.NewNop()
	}
	if prefs == nil {
		prefs = &store.TUIPrefs{Version: 1}
	}
	flat := list.New(nil, taskDelegate{active: true}, 0, 0)
	flat.SetShowTitle(false)
	flat.SetShowHelp(false)
	flat.SetShowStatusBar(false)
	flat.SetFilteringEnabled(false)
	flat.DisableQuitKeybindings()

	prompt := textinput.New()
	prompt.Prompt = ""
	prompt.CharLimit = 256

	return appModel{
		ctx:         ctx,
		ctl:         ctl,
		log:         log,
		store:       s,
		prefs:       prefs,
		width:       80,
		height:      24,
		view:        app.ViewLanding,
		booting:     true,
		login:       newLoginForm(),
		register:    newRegisterForm(),
		addTask:     newTaskForm(),
		flat:        flat,
		showPreview: !prefs.HidePreview,
		prompt:      prompt,
		busy:        1,
	}
}

func (m appModel) Init() tea.Cmd {
	ctl := m.ctl
	return m.start(func(ctx context.Context) {
		_ = ctl.Session.Init(ctx)
	})
}

// start runs fn off the event loop. Controllers talk back through teaPorts, which
// sends into the program, so they must never run inside Update. Callers bump busy.
func (m appModel) start(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return handlerDoneMsg{}
	}
}

// run is start plus busy accounting for calls made from Update.
func (m *appModel) run(fn func(ctx context.Context)) tea.Cmd {
	m.busy++
	return m.start(fn)
}

func (m *appModel) form(id app.FormID) *formModel {
	switch id {
	case app.FormLogin:
		return m.login
	case app.FormRegister:
		return m.register
	case app.FormTask:
		return m.addTask
	}
	return nil
}

// groupRow addresses one visible row of the grouped pane.
type groupRow struct {
	section groupSection
	index   int
}

func (m appModel) sectionCollapsed(s groupSection) bool {
	if s == sectionCompleted {
		return m.prefs.CollapseCompleted
	}
	return m.prefs.CollapseInProgress
}

func (m appModel) groupRows() []groupRow {
	var rows []groupRow
	if !m.sectionCollapsed(sectionInProgress) {
		for i := range m.inProgress {
			rows = append(rows, groupRow{section: sectionInProgress, index: i})
		}
	}
	if !m.sectionCollapsed(sectionCompleted) {
		for i := range m.completed {
			rows = append(rows, groupRow{section: sectionCompleted, index: i})
		}
	}
	return rows
}

func (m *appModel) clampGroupCursor() {
	n := len(m.groupRows())
	if m.groupCursor >= n {
		m.groupCursor = n - 1
	}
	if m.groupCursor < 0 {
		m.groupCursor = 0
	}
}

// selectedTask is the task under the cursor in the focused pane.
func (m appModel) selectedTask() (model.Task, bool) {
	if m.pane == paneGrouped {
		rows := m.groupRows()
		if m.groupCursor < 0 || m.groupCursor >= len(rows) {
			return model.Task{}, false
		}
		r := rows[m.groupCursor]
		if r.section == sectionCompleted {
			return m.completed[r.index], true
		}
		return m.inProgress[r.index], true
	}
	it, ok := m.flat.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m *appModel) setPane(p pane) {
	m.pane = p
	m.flat.SetDelegate(taskDelegate{active: p == paneFlat})
}

func (m *appModel) savePrefs() {
	m.prefs.HidePreview = !m.showPreview
	if err := m.store.SaveTUIPrefs(m.prefs); err != nil {
		m.log.Warn("save tui prefs", zap.Error(err))
	}
}

func (m *appModel) pushModal(ms modalState) {
	m.modals = append(m.modals, ms)
	if len(m.modals) == 1 {
		m.activateHeadModal()
	}
}

func (m *appModel) popModal() {
	if len(m.modals) == 0 {
		return
	}
	m.modals = m.modals[1:]
	m.activateHeadModal()
}

func (m *appModel) activateHeadModal() {
	if len(m.modals) == 0 || m.modals[0].kind != modalPrompt {
		m.prompt.Blur()
		return
	}
	m.prompt.SetValue(m.modals[0].promptInitial)
	m.prompt.CursorEnd()
	m.prompt.Focus()
}

func (m appModel) headModal() (modalState, bool) {
	if len(m.modals) == 0 {
		return modalState{}, false
	}
	return m.modals[0], true
}
