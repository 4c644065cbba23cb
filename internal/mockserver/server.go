// Package mockserver is an in-memory implementation of the task service REST API.
// It backs the test suites and `todo mock-server` for local development.
package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"todo-cli/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Prefix is where the API is mounted; clients use <server url>+Prefix as base URL.
	Prefix = "/api"

	// SessionCookie is the name of the session cookie set on login.
	SessionCookie = "token"
)

type Options struct {
	Logger *zap.Logger
	// BcryptCost defaults to bcrypt.DefaultCost. Tests use bcrypt.MinCost.
	BcryptCost int
}

// Request is one observed request; Path is relative to Prefix.
type Request struct {
	Method string
	Path   string
}

func (r Request) String() string { return r.Method + " " + r.Path }

type user struct {
	username string
	email    string
	hash     []byte
}

type task struct {
	id          int
	title       string
	description string
	status      model.Status
}

type failure struct {
	method string
	path   string
	status int
	body   string
}

type Server struct {
	log  *zap.Logger
	cost int

	mu       sync.Mutex
	users    map[string]*user
	sessions map[string]string
	tasks    map[string][]*task
	nextID   int
	requests []Request
	failures []failure

	router chi.Router
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	s := &Server{
		log:      log,
		cost:     cost,
		users:    map[string]*user{},
		sessions: map[string]string{},
		tasks:    map[string][]*task{},
		nextID:   1,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route(Prefix, func(r chi.Router) {
		r.Use(s.observe)

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/todo/gettask", s.handleListTasks)
			r.Post("/todo/add", s.handleAddTask)
			r.Put("/todo/update/{id}", s.handleUpdateTask)
			r.Delete("/todo/delete/{id}", s.handleDeleteTask)
			r.Get("/todo/mark/{id}", s.handleMarkTask)
		})
	})
	return r
}

// Requests returns every request seen so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// FailNext makes the next request matching method and path (relative to Prefix)
// answer status with body as plain text.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: path, status: status, body: body})
}

// AddUser registers a user directly, bypassing the HTTP API.
func (s *Server) AddUser(username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = &user{username: username, email: email, hash: hash}
	return nil
}

// AddTask seeds a task for username and returns its id.
func (s *Server) AddTask(username, title, description string, status model.Status) model.TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.newTaskLocked(title, description, status)
	s.tasks[username] = append(s.tasks[username], t)
	return model.TaskID(strconv.Itoa(t.id))
}

// Tasks returns username's tasks in server order.
func (s *Server) Tasks(username string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.tasks[username]))
	for _, t := range s.tasks[username] {
		out = append(out, t.model())
	}
	return out
}

func (s *Server) newTaskLocked(title, description string, status model.Status) *task {
	if status != model.StatusChecked {
		status = model.StatusUnchecked
	}
	t := &task{id: s.nextID, title: title, description: description, status: status}
	s.nextID++
	return t
}

func (t *task) model() model.Task {
	return model.Task{
		ID:          model.TaskID(strconv.Itoa(t.id)),
		Title:       t.title,
		Description: t.description,
		Status:      t.status,
	}
}

// wireTask sends numeric ids, as the hosted service's SQL backend does.
type wireTask struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
}

func (t *task) wire() wireTask {
	return wireTask{ID: t.id, Title: t.title, Description: t.description, Status: t.status}
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, Prefix)
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: path})
		var injected *failure
		for i, f := range s.failures {
			if f.method == r.Method && f.path == path {
				injected = &f
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		s.log.Debug("mock request", zap.String("method", r.Method), zap.String("path", path))
		if injected != nil {
			http.Error(w, injected.body, injected.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxUserKey struct{}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.sessionUser(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) string {
	username, _ := r.Context().Value(ctxUserKey{}).(string)
	return username
}

func (s *Server) sessionUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.sessions[c.Value]
	return username, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
