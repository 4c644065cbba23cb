// Package app holds the client's session and task synchronization rules. It talks to the
// service through Backend and to whatever surface the user sees through Ports.
package app

import (
	"context"

	"todo-cli/internal/api"
	"todo-cli/internal/model"
)

// View is the screen currently shown. Exactly one is visible at a time.
type View int

const (
	ViewLanding View = iota
	ViewLogin
	ViewRegister
	ViewMainApp
)

func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewMainApp:
		return "main"
	default:
		return "unknown"
	}
}

// ClientState is the single explicit client state. User is set iff View is ViewMainApp.
type ClientState struct {
	View View
	User *model.User
}

// Backend is the service API. *api.Client implements it.
type Backend interface {
	Register(ctx context.Context, in api.RegisterInput) error
	Login(ctx context.Context, in api.LoginInput) (model.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (model.User, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	AddTask(ctx context.Context, in api.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id model.TaskID, in api.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id model.TaskID) error
	MarkTask(ctx context.Context, id model.TaskID) error
}

var _ Backend = (*api.Client)(nil)

// CookieClearer drops locally stored session cookies.
type CookieClearer interface {
	Clear() error
}
