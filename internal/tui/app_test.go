package tui

import (
	"context"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todo-cli/internal/api"
	"todo-cli/internal/app"
	"todo-cli/internal/mockserver"
	"todo-cli/internal/model"
	"todo-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

type tuiEnv struct {
	srv   *mockserver.Server
	ch    chanSender
	store store.Store
	m     appModel
}

func newTUIEnv(t *testing.T) *tuiEnv {
	t.Helper()
	srv := mockserver.New(mockserver.Options{BcryptCost: bcrypt.MinCost})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client, err := api.New(api.Options{BaseURL: ts.URL + mockserver.Prefix, Jar: jar})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := srv.AddUser("a", "a@example.com", "b"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	srv.AddTask("a", "t1", "d1", model.StatusUnchecked)
	srv.AddTask("a", "t2", "d2", model.StatusChecked)

	ch := make(chanSender, 64)
	ctl := app.New(app.Options{Backend: client, Ports: &teaPorts{s: ch}})
	s := store.Store{Dir: t.TempDir()}
	e := &tuiEnv{srv: srv, ch: ch, store: s, m: newAppModel(context.Background(), ctl, s, nil, nil)}
	e.apply(tea.WindowSizeMsg{Width: 100, Height: 30})
	e.drive(t, e.m.Init())
	return e
}

func (e *tuiEnv) apply(msg tea.Msg) tea.Cmd {
	mm, cmd := e.m.Update(msg)
	e.m = mm.(appModel)
	return cmd
}

// drive runs a handler command the way the program would and applies every message it
// sends until it finishes. Each modal it raises is answered with the next key batch.
func (e *tuiEnv) drive(t *testing.T, cmd tea.Cmd, answers ...[]tea.KeyMsg) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a handler command")
	}
	go func() { e.ch <- cmd() }()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-e.ch:
			e.apply(msg)
			switch msg.(type) {
			case handlerDoneMsg:
				return
			case confirmRequestMsg, promptRequestMsg:
				if len(answers) == 0 {
					t.Fatalf("unexpected modal request %#v", msg)
				}
				for _, k := range answers[0] {
					e.apply(k)
				}
				answers = answers[1:]
			}
		case <-timeout:
			t.Fatalf("handler did not finish")
		}
	}
}

func (e *tuiEnv) press(t *testing.T, k tea.KeyMsg, answers ...[]tea.KeyMsg) {
	t.Helper()
	e.drive(t, e.apply(k), answers...)
}

func (e *tuiEnv) typ(s string) {
	e.apply(runes(s))
}

func (e *tuiEnv) login(t *testing.T) {
	t.Helper()
	e.press(t, runes("l"))
	e.typ("a")
	e.apply(key(tea.KeyTab))
	e.typ("b")
	e.press(t, key(tea.KeyEnter))
	if e.m.view != app.ViewMainApp {
		t.Fatalf("expected main view after login, got %s", e.m.view)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestInit_LandsWithoutSession(t *testing.T) {
	e := newTUIEnv(t)
	if e.m.booting || e.m.view != app.ViewLanding || e.m.busy != 0 {
		t.Fatalf("unexpected state booting=%v view=%s busy=%d", e.m.booting, e.m.view, e.m.busy)
	}
	if !strings.Contains(e.m.View(), "Log in") {
		t.Fatalf("expected landing buttons in view")
	}
}

func TestLogin_EntersMainAndLoadsBothViews(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	if e.m.profile != "a" {
		t.Fatalf("expected profile a, got %q", e.m.profile)
	}
	if len(e.m.flat.Items()) != 2 {
		t.Fatalf("expected two flat items, got %d", len(e.m.flat.Items()))
	}
	if len(e.m.inProgress) != 1 || e.m.inProgress[0].Title != "t1" || len(e.m.completed) != 1 {
		t.Fatalf("unexpected groups %#v %#v", e.m.inProgress, e.m.completed)
	}
	if e.m.login.value(app.InputLoginPassword) != "" {
		t.Fatalf("expected login form cleared after leaving it")
	}
	v := e.m.View()
	if !strings.Contains(v, "t1") || !strings.Contains(v, "Completed") {
		t.Fatalf("expected tasks in main view:\n%s", v)
	}
}

func TestLogin_RejectedShowsPasswordError(t *testing.T) {
	e := newTUIEnv(t)
	e.press(t, runes("l"))
	e.typ("a")
	e.apply(key(tea.KeyTab))
	e.typ("wrong")
	e.press(t, key(tea.KeyEnter))
	if e.m.view != app.ViewLogin {
		t.Fatalf("expected to stay on login, got %s", e.m.view)
	}
	if got := e.m.login.errorFor(app.InputLoginPassword); got != "Invalid username or password" {
		t.Fatalf("unexpected password error %q", got)
	}
	if e.m.login.value(app.InputLoginUsername) != "a" {
		t.Fatalf("expected typed username kept")
	}
}

func TestLogin_EnterOnFirstFieldAdvances(t *testing.T) {
	e := newTUIEnv(t)
	e.press(t, runes("l"))
	if cmd := e.apply(key(tea.KeyEnter)); cmd != nil {
		t.Fatalf("expected enter on first field not to submit")
	}
	if e.m.login.focus != 1 {
		t.Fatalf("expected focus on password, got %d", e.m.login.focus)
	}
}

func TestRegister_NoticeCarriesToLogin(t *testing.T) {
	e := newTUIEnv(t)
	e.press(t, runes("r"))
	if e.m.view != app.ViewRegister {
		t.Fatalf("expected register view, got %s", e.m.view)
	}
	e.typ("new")
	e.apply(key(tea.KeyTab))
	e.typ("new@example.com")
	e.apply(key(tea.KeyTab))
	e.typ("pw")
	e.press(t, key(tea.KeyEnter))
	if e.m.view != app.ViewLogin {
		t.Fatalf("expected login view after register, got %s", e.m.view)
	}
	if e.m.notice != "Registration successful! Please login." {
		t.Fatalf("unexpected notice %q", e.m.notice)
	}
	if e.m.register.value(app.InputRegisterUsername) != "" {
		t.Fatalf("expected register form cleared")
	}
}

func TestRegister_FieldErrorForDuplicateUser(t *testing.T) {
	e := newTUIEnv(t)
	e.press(t, runes("r"))
	e.typ("a")
	e.apply(key(tea.KeyTab))
	e.typ("a@example.com")
	e.apply(key(tea.KeyTab))
	e.typ("pw")
	e.press(t, key(tea.KeyEnter))
	if got := e.m.register.errorFor(app.InputRegisterUsername); got != "Username already exists" {
		t.Fatalf("unexpected username error %q", got)
	}
	if e.m.register.focus != 0 {
		t.Fatalf("expected focus moved to the errored field")
	}
}

func TestDelete_AsksAndHonorsAnswer(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)

	e.press(t, runes("d"), []tea.KeyMsg{runes("n")})
	if len(e.srv.Tasks("a")) != 2 || len(e.m.modals) != 0 {
		t.Fatalf("expected nothing deleted after declining")
	}

	e.press(t, runes("d"), []tea.KeyMsg{key(tea.KeyEnter)})
	got := e.srv.Tasks("a")
	if len(got) != 1 || got[0].Title != "t2" {
		t.Fatalf("expected t1 deleted, got %#v", got)
	}
	if len(e.m.flat.Items()) != 1 || len(e.m.inProgress) != 0 {
		t.Fatalf("expected views refreshed after delete")
	}
}

func TestEdit_PromptsArePrefilled(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.press(t, runes("e"),
		[]tea.KeyMsg{key(tea.KeyCtrlU), runes("New title"), key(tea.KeyEnter)},
		[]tea.KeyMsg{key(tea.KeyEnter)},
	)
	got := e.srv.Tasks("a")[0]
	if got.Title != "New title" || got.Description != "d1" || got.Checked() {
		t.Fatalf("unexpected edited task %#v", got)
	}
}

func TestEdit_EscCancels(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.srv.ResetRequests()
	e.press(t, runes("e"), []tea.KeyMsg{key(tea.KeyEsc)}, []tea.KeyMsg{key(tea.KeyEnter)})
	if reqs := e.srv.Requests(); len(reqs) != 0 {
		t.Fatalf("expected no requests after cancel, got %v", reqs)
	}
}

func TestToggle_FromGroupedPane(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.apply(key(tea.KeyTab))
	if e.m.pane != paneGrouped {
		t.Fatalf("expected grouped pane focused")
	}
	e.press(t, key(tea.KeySpace))
	if !e.srv.Tasks("a")[0].Checked() {
		t.Fatalf("expected t1 checked")
	}
	if len(e.m.completed) != 2 || len(e.m.inProgress) != 0 {
		t.Fatalf("expected both tasks completed, got %#v %#v", e.m.inProgress, e.m.completed)
	}
}

func TestToggle_FailureAlerts(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.srv.FailNext("GET", "/todo/mark/1", 500, "boom")
	e.press(t, key(tea.KeySpace))
	ms, ok := e.m.headModal()
	if !ok || ms.kind != modalAlert || ms.message != "Failed to update task status: boom" {
		t.Fatalf("unexpected modal %#v", ms)
	}
	e.apply(key(tea.KeyEnter))
	if len(e.m.modals) != 0 {
		t.Fatalf("expected alert dismissed")
	}
}

func TestAddTask_PopupSubmitsAndCloses(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.apply(runes("a"))
	if !e.m.popupOpen {
		t.Fatalf("expected popup open")
	}
	e.typ("t3")
	e.apply(key(tea.KeyTab))
	e.typ("d3")
	e.press(t, key(tea.KeyEnter))
	if e.m.popupOpen {
		t.Fatalf("expected popup closed")
	}
	if e.m.addTask.value(app.InputTaskTitle) != "" {
		t.Fatalf("expected task form reset")
	}
	if len(e.srv.Tasks("a")) != 3 || len(e.m.flat.Items()) != 3 || len(e.m.inProgress) != 2 {
		t.Fatalf("expected new task everywhere")
	}
}

func TestAddTask_EmptyFieldSendsNothing(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.apply(runes("a"))
	e.typ("only title")
	e.srv.ResetRequests()
	e.press(t, key(tea.KeyCtrlS))
	if !e.m.popupOpen || len(e.srv.Requests()) != 0 {
		t.Fatalf("expected popup kept open and no request")
	}
	e.apply(key(tea.KeyEsc))
	if e.m.popupOpen {
		t.Fatalf("expected esc to close popup")
	}
}

func TestLogout_ReturnsToLanding(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.press(t, runes("L"))
	if e.m.view != app.ViewLanding || e.m.profile != "" || len(e.m.flat.Items()) != 0 {
		t.Fatalf("expected cleared landing state")
	}
}

func TestCollapse_PersistsPrefs(t *testing.T) {
	e := newTUIEnv(t)
	e.login(t)
	e.apply(runes("1"))
	for _, r := range e.m.groupRows() {
		if r.section == sectionInProgress {
			t.Fatalf("expected in-progress rows hidden")
		}
	}
	e.apply(runes("p"))
	prefs, err := e.store.LoadTUIPrefs()
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if !prefs.CollapseInProgress || !prefs.HidePreview || prefs.CollapseCompleted {
		t.Fatalf("unexpected prefs %#v", prefs)
	}
}

func TestModals_QueueInOrder(t *testing.T) {
	e := newTUIEnv(t)
	e.apply(alertMsg{message: "one"})
	e.apply(alertMsg{message: "two"})
	if ms, _ := e.m.headModal(); ms.message != "one" {
		t.Fatalf("expected first alert shown, got %q", ms.message)
	}
	e.apply(key(tea.KeyEnter))
	if ms, _ := e.m.headModal(); ms.message != "two" {
		t.Fatalf("expected second alert shown, got %q", ms.message)
	}
	e.apply(key(tea.KeyEsc))
	if _, ok := e.m.headModal(); ok {
		t.Fatalf("expected queue empty")
	}
}

func TestCtrlC_AnswersPendingModals(t *testing.T) {
	e := newTUIEnv(t)
	reply := make(chan bool, 1)
	e.apply(confirmRequestMsg{message: "sure?", reply: reply})
	cmd := e.apply(key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
	select {
	case ok := <-reply:
		if ok {
			t.Fatalf("expected pending confirm answered false")
		}
	default:
		t.Fatalf("expected pending confirm answered")
	}
}

func TestLogin_NavigationWaitsForSubmit(t *testing.T) {
	e := newTUIEnv(t)
	e.press(t, runes("l"))
	e.typ("a")
	e.apply(key(tea.KeyTab))
	e.typ("b")
	submit := e.apply(key(tea.KeyEnter))
	if cmd := e.apply(key(tea.KeyEsc)); cmd != nil {
		t.Fatalf("expected esc ignored while login is running")
	}
	e.drive(t, submit)
	if e.m.view != app.ViewMainApp {
		t.Fatalf("expected main view, got %s", e.m.view)
	}
	e.press(t, runes("L"))
	if e.m.view != app.ViewLanding {
		t.Fatalf("expected landing after logout, got %s", e.m.view)
	}
}
