package app

import (
	"context"
	"sync"

	"todo-cli/internal/api"
	"todo-cli/internal/model"

	"go.uber.org/zap"
)

type Options struct {
	Backend Backend
	Ports   Ports
	Logger  *zap.Logger

	// Cookies is optional; when set it is cleared on logout.
	Cookies CookieClearer
}

// Controller wires the session, sync, and form controllers over one Backend and Ports.
type Controller struct {
	Session *Session
	Sync    *Sync

	Register *RegisterForm
	Login    *LoginForm
	AddTask  *AddTaskForm
}

func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sy := &Sync{backend: opts.Backend, ports: opts.Ports, log: log}
	se := &Session{
		backend: opts.Backend,
		ports:   opts.Ports,
		sync:    sy,
		cookies: opts.Cookies,
		log:     log,
		state:   ClientState{View: ViewLanding},
	}
	return &Controller{
		Session:  se,
		Sync:     sy,
		Register: &RegisterForm{backend: opts.Backend, ports: opts.Ports, session: se, log: log},
		Login:    &LoginForm{backend: opts.Backend, ports: opts.Ports, session: se, log: log},
		AddTask:  &AddTaskForm{backend: opts.Backend, ports: opts.Ports, sync: sy, log: log},
	}
}

// Session owns ClientState. Every transition shows exactly one view.
type Session struct {
	backend Backend
	ports   Ports
	sync    *Sync
	cookies CookieClearer
	log     *zap.Logger

	mu    sync.Mutex
	state ClientState
}

func (s *Session) State() ClientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// transition holds mu across ShowView so the last view shown always matches state
// when transitions race. Ports must not call back into Session.
func (s *Session) transition(v View, user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ClientState{View: v, User: user}
	s.ports.ShowView(v)
}

// Init checks the stored session. Any failure lands on ViewLanding; the error is
// returned for callers that report it.
func (s *Session) Init(ctx context.Context) error {
	u, err := s.backend.Me(ctx)
	if err != nil {
		if api.IsTransport(err) {
			s.log.Warn("session check failed", zap.Error(err))
		} else {
			s.log.Debug("no active session", zap.Error(err))
		}
		s.transition(ViewLanding, nil)
		return err
	}
	return s.enterMain(ctx, u)
}

// LoginSucceeded enters the main view for user and loads both task lists.
func (s *Session) LoginSucceeded(ctx context.Context, user model.User) error {
	return s.enterMain(ctx, user)
}

func (s *Session) enterMain(ctx context.Context, u model.User) error {
	s.transition(ViewMainApp, &u)
	s.ports.SetProfile(u.Username)
	return s.sync.RefreshAll(ctx)
}

// Logout ends the session. The view goes to ViewLanding whatever the service answers.
func (s *Session) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	if err != nil {
		s.log.Warn("logout failed", zap.Error(err))
	}
	if s.cookies != nil {
		if cerr := s.cookies.Clear(); cerr != nil {
			s.log.Warn("clear cookies", zap.Error(cerr))
		}
	}
	s.transition(ViewLanding, nil)
	return err
}

func (s *Session) ShowLanding()     { s.transition(ViewLanding, nil) }
func (s *Session) OpenLogin()       { s.transition(ViewLogin, nil) }
func (s *Session) OpenRegister()    { s.transition(ViewRegister, nil) }
func (s *Session) LoginToRegister() { s.transition(ViewRegister, nil) }
func (s *Session) RegisterToLogin() { s.transition(ViewLogin, nil) }
