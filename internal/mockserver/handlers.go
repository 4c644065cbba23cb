package mockserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"todo-cli/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userJSON struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fieldErrs := map[string]string{}
	if in.Username == "" {
		fieldErrs["username"] = "Username is required"
	}
	if in.Email == "" {
		fieldErrs["email"] = "Email is required"
	} else if !strings.Contains(in.Email, "@") {
		fieldErrs["email"] = "Email is invalid"
	}
	if in.Password == "" {
		fieldErrs["password"] = "Password is required"
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
		return
	}

	s.mu.Lock()
	_, exists := s.users[in.Username]
	s.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Username already exists"})
		return
	}
	if err := s.AddUser(in.Username, in.Email, in.Password); err != nil {
		s.log.Error("hash password", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Registration failed"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	u, ok := s.users[strings.TrimSpace(in.Username)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = u.username
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, userJSON{Username: u.username, Email: u.email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := s.sessionUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	u := s.users[username]
	s.mu.Unlock()
	if u == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, userJSON{Username: u.username, Email: u.email})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	username := userFrom(r)
	s.mu.Lock()
	out := make([]wireTask, 0, len(s.tasks[username]))
	for _, t := range s.tasks[username] {
		out = append(out, t.wire())
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type taskBody struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var in taskBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		http.Error(w, "Title and description are required", http.StatusBadRequest)
		return
	}

	username := userFrom(r)
	s.mu.Lock()
	t := s.newTaskLocked(in.Title, in.Description, model.StatusUnchecked)
	s.tasks[username] = append(s.tasks[username], t)
	out := t.wire()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in taskBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		http.Error(w, "Title and description are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.findLocked(userFrom(r), chi.URLParam(r, "id"))
	if t == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	t.title = strings.TrimSpace(in.Title)
	t.description = strings.TrimSpace(in.Description)
	switch in.Status {
	case model.StatusChecked, model.StatusUnchecked:
		t.status = in.Status
	}
	writeJSON(w, http.StatusOK, t.wire())
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	username := userFrom(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, idx := s.findLocked(username, chi.URLParam(r, "id"))
	if t == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	list := s.tasks[username]
	s.tasks[username] = append(list[:idx], list[idx+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Task deleted"})
}

func (s *Server) handleMarkTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.findLocked(userFrom(r), chi.URLParam(r, "id"))
	if t == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if t.status == model.StatusChecked {
		t.status = model.StatusUnchecked
	} else {
		t.status = model.StatusChecked
	}
	writeJSON(w, http.StatusOK, t.wire())
}

func (s *Server) findLocked(username, rawID string) (*task, int) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return nil, -1
	}
	for i, t := range s.tasks[username] {
		if t.id == id {
			return t, i
		}
	}
	return nil, -1
}
