package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo-cli/internal/mockserver"
	"todo-cli/internal/model"

	"golang.org/x/crypto/bcrypt"
)

type cliEnv struct {
	srv     *mockserver.Server
	baseURL string
	dir     string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	srv := mockserver.New(mockserver.Options{BcryptCost: bcrypt.MinCost})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	if err := srv.AddUser("a", "a@example.com", "b"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return &cliEnv{srv: srv, baseURL: ts.URL + mockserver.Prefix, dir: t.TempDir()}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config-dir", e.dir, "--base-url", e.baseURL}, args...))

	err = cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	if _, stderr, err := e.run(t, "", "login", "--username", "a", "--password", "b"); err != nil {
		t.Fatalf("login: %v (%s)", err, stderr)
	}
	e.srv.ResetRequests()
}

func (e *cliEnv) paths() []string {
	var out []string
	for _, r := range e.srv.Requests() {
		out = append(out, r.String())
	}
	return out
}

func decodeData[T any](t *testing.T, b []byte) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return env.Data
}

type sessionOut struct {
	View       string       `json:"view"`
	User       *model.User  `json:"user"`
	Tasks      []model.Task `json:"tasks"`
	InProgress []model.Task `json:"inProgress"`
	Completed  []model.Task `json:"completed"`
}

func TestWhoami_WithoutSessionReportsLanding(t *testing.T) {
	e := newCLIEnv(t)
	stdout, stderr, err := e.run(t, "", "whoami")
	if err == nil {
		t.Fatalf("expected error without a session")
	}
	if !strings.Contains(string(stderr), "not logged in") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
	got := decodeData[sessionOut](t, stdout)
	if got.View != "landing" || got.User != nil {
		t.Fatalf("unexpected output %#v", got)
	}
}

func TestLogin_PersistsSessionAcrossInvocations(t *testing.T) {
	e := newCLIEnv(t)
	e.srv.AddTask("a", "open", "x", model.StatusUnchecked)
	e.srv.AddTask("a", "done", "y", model.StatusChecked)

	stdout, stderr, err := e.run(t, "", "login", "--username", "a", "--password", "b")
	if err != nil {
		t.Fatalf("login: %v (%s)", err, stderr)
	}
	got := decodeData[sessionOut](t, stdout)
	if got.View != "main" || got.User == nil || got.User.Username != "a" {
		t.Fatalf("unexpected login output %#v", got)
	}
	if len(got.Tasks) != 2 || len(got.InProgress) != 1 || len(got.Completed) != 1 {
		t.Fatalf("unexpected lists %#v", got)
	}

	if _, err := os.Stat(filepath.Join(e.dir, "state.sqlite")); err != nil {
		t.Fatalf("expected cookie store on disk: %v", err)
	}

	stdout, _, err = e.run(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if got := decodeData[sessionOut](t, stdout); got.User == nil || got.User.Username != "a" {
		t.Fatalf("expected stored session, got %#v", got)
	}

	if _, _, err := e.run(t, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := e.run(t, "", "whoami"); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestLogin_ErrorsEnvelope(t *testing.T) {
	e := newCLIEnv(t)
	stdout, _, err := e.run(t, "", "login", "--username", "a")
	if err == nil {
		t.Fatalf("expected error")
	}
	var env struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, stdout)
	}
	if env.Errors["login-password"] != "Password is required" {
		t.Fatalf("unexpected errors %#v", env.Errors)
	}
	if len(e.srv.Requests()) != 0 {
		t.Fatalf("expected no requests, got %v", e.paths())
	}

	stdout, _, _ = e.run(t, "", "login", "--username", "a", "--password", "nope")
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, stdout)
	}
	if env.Errors["login-password"] != "Invalid username or password" {
		t.Fatalf("unexpected errors %#v", env.Errors)
	}
}

func TestRegister_SuccessGoesToLogin(t *testing.T) {
	e := newCLIEnv(t)
	stdout, stderr, err := e.run(t, "", "register", "--username", "new", "--email", "n@example.com", "--password", "pw")
	if err != nil {
		t.Fatalf("register: %v (%s)", err, stderr)
	}
	if !strings.Contains(string(stderr), "Registration successful! Please login.") {
		t.Fatalf("expected notice on stderr, got %q", stderr)
	}
	got := decodeData[map[string]string](t, stdout)
	if got["view"] != "login" || got["username"] != "new" {
		t.Fatalf("unexpected output %#v", got)
	}
}

func TestTasks_AddListToggleEditRm(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)

	stdout, stderr, err := e.run(t, "", "tasks", "add", "--title", "Buy milk", "--description", "2L")
	if err != nil {
		t.Fatalf("add: %v (%s)", err, stderr)
	}
	added := decodeData[struct {
		Task       model.Task   `json:"task"`
		Tasks      []model.Task `json:"tasks"`
		InProgress []model.Task `json:"inProgress"`
	}](t, stdout)
	if added.Task.Title != "Buy milk" || len(added.Tasks) != 1 || len(added.InProgress) != 1 {
		t.Fatalf("unexpected add output %#v", added)
	}
	id := added.Task.ID.String()

	stdout, _, err = e.run(t, "", "tasks", "toggle", id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := decodeData[sessionOut](t, stdout); len(got.Completed) != 1 {
		t.Fatalf("expected task completed, got %#v", got)
	}

	if _, _, err := e.run(t, "", "tasks", "edit", id, "--title", "Buy oat milk"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got := e.srv.Tasks("a")[0]
	if got.Title != "Buy oat milk" || got.Description != "2L" || !got.Checked() {
		t.Fatalf("edit must keep description and displayed status, got %#v", got)
	}

	stdout, _, err = e.run(t, "", "tasks", "list", "--grouped")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	grouped := decodeData[sessionOut](t, stdout)
	if len(grouped.Completed) != 1 || len(grouped.InProgress) != 0 {
		t.Fatalf("unexpected grouped output %#v", grouped)
	}

	stdout, _, err = e.run(t, "n\n", "tasks", "rm", id)
	if err != nil {
		t.Fatalf("rm declined: %v", err)
	}
	if got := decodeData[map[string]any](t, stdout); got["deleted"] != false {
		t.Fatalf("expected declined delete, got %#v", got)
	}
	if len(e.srv.Tasks("a")) != 1 {
		t.Fatalf("declined delete must keep the task")
	}

	if _, _, err := e.run(t, "", "tasks", "rm", id, "--yes"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if len(e.srv.Tasks("a")) != 0 {
		t.Fatalf("expected task deleted")
	}
}

func TestTasks_AddWithEmptyDescriptionSendsNothing(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)
	if _, _, err := e.run(t, "", "tasks", "add", "--title", "x"); err == nil {
		t.Fatalf("expected error")
	}
	for _, p := range e.paths() {
		if p == "POST /todo/add" {
			t.Fatalf("unexpected add request: %v", e.paths())
		}
	}
}

func TestTasks_RmServerFailureAlerts(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)
	id := e.srv.AddTask("a", "t", "d", model.StatusUnchecked)
	e.srv.FailNext(http.MethodDelete, "/todo/delete/"+id.String(), http.StatusNotFound, "Task not found")

	_, stderr, err := e.run(t, "", "tasks", "rm", id.String(), "--yes")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(stderr), "Failed to delete task: Task not found") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
	paths := e.paths()
	if paths[len(paths)-1] != "DELETE /todo/delete/"+id.String() {
		t.Fatalf("expected no refresh after failed delete, got %v", paths)
	}
}

func TestTasks_UnknownIDIsNotFound(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)
	_, stderr, err := e.run(t, "", "tasks", "toggle", "404")
	if err == nil || !strings.Contains(string(stderr), "task not found: 404") {
		t.Fatalf("expected not found, got %v %q", err, stderr)
	}
}

func TestConfig_ShowAndPath(t *testing.T) {
	e := newCLIEnv(t)
	stdout, _, err := e.run(t, "", "config", "show", "--timeout", "2s", "--theme", "dark")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	out := string(stdout)
	if !strings.Contains(out, "base_url: "+e.baseURL) || !strings.Contains(out, "timeout: 2s") || !strings.Contains(out, "theme: dark") {
		t.Fatalf("unexpected config:\n%s", out)
	}

	stdout, _, err = e.run(t, "", "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(string(stdout)) != filepath.Join(e.dir, "config.yaml") {
		t.Fatalf("unexpected path %q", stdout)
	}

	if _, _, err := e.run(t, "", "config", "show", "--theme", "sepia"); err == nil {
		t.Fatalf("expected an unknown theme to be rejected")
	}
}

func TestFormat_EDN(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)
	e.srv.AddTask("a", "t", "d", model.StatusUnchecked)
	stdout, _, err := e.run(t, "", "--format", "edn", "tasks", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := `{:data [{:description "d" :id "1" :status "UNCHECKED" :title "t"}]}`
	if strings.TrimSpace(string(stdout)) != want {
		t.Fatalf("expected %s, got %s", want, stdout)
	}
}
