package tui

import (
	"context"

	"todo-cli/internal/app"
	"todo-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case handlerDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		return m, nil

	case showViewMsg:
		m.applyView(msg.view)
		return m, nil

	case setProfileMsg:
		m.profile = msg.username
		return m, nil

	case clearErrorsMsg:
		if f := m.form(msg.form); f != nil {
			f.clearErrors()
		}
		return m, nil

	case fieldErrorMsg:
		if f := m.form(msg.form); f != nil {
			f.setError(msg.inputID, msg.message)
		}
		return m, nil

	case renderFlatMsg:
		idx := m.flat.Index()
		cmd := m.flat.SetItems(taskItems(msg.tasks))
		if idx >= len(msg.tasks) {
			idx = len(msg.tasks) - 1
		}
		if idx >= 0 {
			m.flat.Select(idx)
		}
		return m, cmd

	case appendFlatMsg:
		cmd := m.flat.InsertItem(len(m.flat.Items()), taskItem{task: msg.task})
		return m, cmd

	case renderGroupedMsg:
		m.inProgress = msg.inProgress
		m.completed = msg.completed
		m.clampGroupCursor()
		return m, nil

	case resetTaskFormMsg:
		m.addTask.reset()
		return m, nil

	case closePopupMsg:
		m.popupOpen = false
		return m, nil

	case alertMsg:
		m.pushModal(modalState{kind: modalAlert, title: "Alert", message: msg.message})
		return m, nil

	case noticeMsg:
		m.notice = msg.message
		return m, nil

	case confirmRequestMsg:
		m.pushModal(modalState{kind: modalConfirm, title: "Confirm", message: msg.message, confirmReply: msg.reply})
		return m, nil

	case promptRequestMsg:
		m.pushModal(modalState{kind: modalPrompt, title: msg.label, promptInitial: msg.initial, promptReply: msg.reply})
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelModals()
			return m, tea.Quit
		}
		if len(m.modals) > 0 {
			return m.updateModal(msg)
		}
		if m.booting {
			return m, nil
		}
		switch m.view {
		case app.ViewLanding:
			return m.updateLanding(msg)
		case app.ViewLogin:
			return m.updateLogin(msg)
		case app.ViewRegister:
			return m.updateRegister(msg)
		case app.ViewMainApp:
			if m.popupOpen {
				return m.updatePopup(msg)
			}
			return m.updateMain(msg)
		}
	}
	return m, nil
}

// applyView switches screens. Leaving a form view clears what was typed into it so
// credentials do not linger.
func (m *appModel) applyView(v app.View) {
	prev := m.view
	m.booting = false
	m.view = v
	m.notice = noticeFor(prev, v, m.notice)
	if prev != v {
		switch prev {
		case app.ViewLogin:
			m.login.reset()
		case app.ViewRegister:
			m.register.reset()
		}
	}
	switch v {
	case app.ViewLanding:
		m.profile = ""
		m.popupOpen = false
		m.inProgress, m.completed = nil, nil
		m.flat.SetItems(nil)
		m.landingFocus = landingLogin
	case app.ViewMainApp:
		m.setPane(paneFlat)
	}
}

// noticeFor keeps a notice across the register->login hop and drops it otherwise.
func noticeFor(prev, next app.View, notice string) string {
	if prev == app.ViewRegister && next == app.ViewLogin {
		return notice
	}
	return ""
}

func (m *appModel) cancelModals() {
	for _, ms := range m.modals {
		answerModal(ms, false, "")
	}
	m.modals = nil
}

func answerModal(ms modalState, ok bool, value string) {
	switch ms.kind {
	case modalConfirm:
		if ms.confirmReply != nil {
			ms.confirmReply <- ok
		}
	case modalPrompt:
		if ms.promptReply != nil {
			ms.promptReply <- promptReply{value: value, ok: ok}
		}
	}
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	head := &m.modals[0]
	switch head.kind {
	case modalAlert:
		switch msg.String() {
		case "enter", "esc", " ", "q":
			m.popModal()
		}
		return m, nil

	case modalConfirm:
		switch msg.String() {
		case "tab", "shift+tab", "left", "right", "h", "l":
			if head.confirmFocus == confirmFocusConfirm {
				head.confirmFocus = confirmFocusCancel
			} else {
				head.confirmFocus = confirmFocusConfirm
			}
		case "y":
			answerModal(*head, true, "")
			m.popModal()
		case "n", "esc", "ctrl+g":
			answerModal(*head, false, "")
			m.popModal()
		case "enter":
			answerModal(*head, head.confirmFocus == confirmFocusConfirm, "")
			m.popModal()
		}
		return m, nil

	case modalPrompt:
		switch msg.String() {
		case "enter":
			answerModal(*head, true, m.prompt.Value())
			m.popModal()
			return m, nil
		case "esc", "ctrl+g":
			answerModal(*head, false, "")
			m.popModal()
			return m, nil
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.ctl.Session
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "left", "right", "h", "j", "k", "up", "down":
		if m.landingFocus == landingLogin {
			m.landingFocus = landingRegister
		} else {
			m.landingFocus = landingLogin
		}
	case "enter", " ":
		if m.landingFocus == landingRegister {
			return m, m.run(func(context.Context) { session.OpenRegister() })
		}
		return m, m.run(func(context.Context) { session.OpenLogin() })
	case "l":
		return m, m.run(func(context.Context) { session.OpenLogin() })
	case "r":
		return m, m.run(func(context.Context) { session.OpenRegister() })
	}
	return m, nil
}

// updateForm handles the keys shared by every form. submit builds the controller call
// for enter on the last field; enter elsewhere advances.
func (m appModel) updateForm(f *formModel, msg tea.KeyMsg, submit func() func(ctx context.Context)) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.next()
		return m, nil
	case "shift+tab", "up":
		f.prev()
		return m, nil
	case "enter":
		if !f.onLastField() {
			f.next()
			return m, nil
		}
		if m.busy > 0 {
			return m, nil
		}
		return m, m.run(submit())
	case "ctrl+s":
		if m.busy > 0 {
			return m, nil
		}
		return m, m.run(submit())
	}
	return m, f.update(msg)
}

// isFormNavKey reports keys that leave a form view. They wait for a running submit so
// its transition cannot be overtaken.
func isFormNavKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "esc", "ctrl+r", "ctrl+l":
		return true
	}
	return false
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.ctl.Session
	if m.busy > 0 && isFormNavKey(msg) {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, m.run(func(context.Context) { session.ShowLanding() })
	case "ctrl+r":
		return m, m.run(func(context.Context) { session.LoginToRegister() })
	}
	return m.updateForm(m.login, msg, func() func(ctx context.Context) {
		form := m.ctl.Login
		v := app.LoginValues{
			Username: m.login.value(app.InputLoginUsername),
			Password: m.login.value(app.InputLoginPassword),
		}
		return func(ctx context.Context) { form.Submit(ctx, v) }
	})
}

func (m appModel) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.ctl.Session
	if m.busy > 0 && isFormNavKey(msg) {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, m.run(func(context.Context) { session.ShowLanding() })
	case "ctrl+l":
		return m, m.run(func(context.Context) { session.RegisterToLogin() })
	}
	return m.updateForm(m.register, msg, func() func(ctx context.Context) {
		form := m.ctl.Register
		v := app.RegisterValues{
			Username: m.register.value(app.InputRegisterUsername),
			Email:    m.register.value(app.InputRegisterEmail),
			Password: m.register.value(app.InputRegisterPassword),
		}
		return func(ctx context.Context) { form.Submit(ctx, v) }
	})
}

func (m appModel) updatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.popupOpen = false
		return m, nil
	}
	return m.updateForm(m.addTask, msg, func() func(ctx context.Context) {
		form := m.ctl.AddTask
		v := app.TaskValues{
			Title:       m.addTask.value(app.InputTaskTitle),
			Description: m.addTask.value(app.InputTaskDesc),
		}
		return func(ctx context.Context) { form.Submit(ctx, v) }
	})
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sy := m.ctl.Sync
	session := m.ctl.Session

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "tab", "shift+tab":
		if m.pane == paneFlat {
			m.setPane(paneGrouped)
		} else {
			m.setPane(paneFlat)
		}
		return m, nil
	case "1":
		m.prefs.CollapseInProgress = !m.prefs.CollapseInProgress
		m.clampGroupCursor()
		m.savePrefs()
		return m, nil
	case "2":
		m.prefs.CollapseCompleted = !m.prefs.CollapseCompleted
		m.clampGroupCursor()
		m.savePrefs()
		return m, nil
	case "p":
		m.showPreview = !m.showPreview
		m.savePrefs()
		return m, nil
	case "a", "n":
		m.popupOpen = true
		m.addTask.focusField(0)
		return m, nil
	case "L":
		return m, m.run(func(ctx context.Context) { _ = session.Logout(ctx) })
	}

	if m.busy > 0 {
		return m, nil
	}
	switch msg.String() {
	case "r":
		return m, m.run(func(ctx context.Context) { _ = sy.RefreshAll(ctx) })
	case " ", "x":
		return m.withSelected(func(ctx context.Context, t model.Task) { _ = sy.Toggle(ctx, t) })
	case "e":
		return m.withSelected(func(ctx context.Context, t model.Task) { _ = sy.Edit(ctx, t) })
	case "d", "delete":
		return m.withSelected(func(ctx context.Context, t model.Task) { _ = sy.Delete(ctx, t) })
	}
	return m, nil
}

func (m appModel) withSelected(fn func(ctx context.Context, t model.Task)) (tea.Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	return m, m.run(func(ctx context.Context) { fn(ctx, t) })
}

func (m *appModel) moveCursor(delta int) {
	if m.pane == paneGrouped {
		m.groupCursor += delta
		m.clampGroupCursor()
		return
	}
	if delta < 0 {
		m.flat.CursorUp()
	} else {
		m.flat.CursorDown()
	}
}

func (m *appModel) resizeLists() {
	leftW, _ := splitWidths(m.width)
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	m.flat.SetSize(leftW-2, h)
}
