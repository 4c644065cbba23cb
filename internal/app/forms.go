package app

import (
	"context"
	"errors"
	"strings"

	"todo-cli/internal/api"
	"todo-cli/internal/model"

	"go.uber.org/zap"
)

type SubmitResult int

const (
	// Invalid means a required field was empty and nothing was sent.
	Invalid SubmitResult = iota
	Failed
	Succeeded
)

func (r SubmitResult) String() string {
	switch r {
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	case Succeeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

const (
	msgRegistered     = "Registration successful! Please login."
	msgRegisterFailed = "Registration failed."
	msgWentWrong      = "Something went wrong!"
	msgLoginFailed    = "Login failed."
	msgAddTaskFailed  = "Failed to add task. Please try again."
)

type field struct {
	inputID string
	label   string
	value   *string
}

// trimAll trims every field in place.
func trimAll(fields []field) {
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
	}
}

// firstMissing returns the first empty field in declaration order.
func firstMissing(fields []field) (field, bool) {
	for _, f := range fields {
		if *f.value == "" {
			return f, true
		}
	}
	return field{}, false
}

type RegisterValues struct {
	Username string
	Email    string
	Password string
}

type RegisterForm struct {
	backend Backend
	ports   Ports
	session *Session
	log     *zap.Logger
}

func (f *RegisterForm) Submit(ctx context.Context, v RegisterValues) SubmitResult {
	f.ports.ClearErrors(FormRegister)
	fields := []field{
		{InputRegisterUsername, "Username", &v.Username},
		{InputRegisterEmail, "Email", &v.Email},
		{InputRegisterPassword, "Password", &v.Password},
	}
	trimAll(fields)
	if missing, ok := firstMissing(fields); ok {
		f.ports.FieldError(FormRegister, missing.inputID, missing.label+" is required")
		return Invalid
	}

	err := f.backend.Register(ctx, api.RegisterInput{Username: v.Username, Email: v.Email, Password: v.Password})
	if err == nil {
		f.ports.Notice(msgRegistered)
		f.session.RegisterToLogin()
		return Succeeded
	}

	var re *api.RegisterError
	switch {
	case errors.As(err, &re) && len(re.Fields) > 0:
		for _, name := range re.FieldNames() {
			f.ports.FieldError(FormRegister, "register-"+name, re.Fields[name])
		}
	case errors.As(err, &re) && re.Message != "":
		f.ports.FieldError(FormRegister, InputRegisterUsername, re.Message)
	case errors.As(err, &re):
		f.ports.Alert(msgRegisterFailed)
	default:
		f.log.Error("register", zap.Error(err))
		f.ports.Alert(msgWentWrong)
	}
	return Failed
}

type LoginValues struct {
	Username string
	Password string
}

type LoginForm struct {
	backend Backend
	ports   Ports
	session *Session
	log     *zap.Logger
}

func (f *LoginForm) Submit(ctx context.Context, v LoginValues) SubmitResult {
	f.ports.ClearErrors(FormLogin)
	fields := []field{
		{InputLoginUsername, "Username", &v.Username},
		{InputLoginPassword, "Password", &v.Password},
	}
	trimAll(fields)
	if missing, ok := firstMissing(fields); ok {
		f.ports.FieldError(FormLogin, missing.inputID, missing.label+" is required")
		return Invalid
	}

	u, err := f.backend.Login(ctx, api.LoginInput{Username: v.Username, Password: v.Password})
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			f.ports.FieldError(FormLogin, InputLoginPassword, se.Message(msgLoginFailed))
		} else {
			f.log.Error("login", zap.Error(err))
			f.ports.Alert(msgWentWrong)
		}
		return Failed
	}
	if u.Username == "" {
		u.Username = v.Username
	}
	// A failed list refresh is already logged; the session itself is established.
	_ = f.session.LoginSucceeded(ctx, u)
	return Succeeded
}

type TaskValues struct {
	Title       string
	Description string
}

type AddTaskForm struct {
	backend Backend
	ports   Ports
	sync    *Sync
	log     *zap.Logger
}

// Submit creates a task. Missing fields abort without a message or request.
func (f *AddTaskForm) Submit(ctx context.Context, v TaskValues) (model.Task, SubmitResult) {
	f.ports.ClearErrors(FormTask)
	fields := []field{
		{InputTaskTitle, "Title", &v.Title},
		{InputTaskDesc, "Description", &v.Description},
	}
	trimAll(fields)
	if _, ok := firstMissing(fields); ok {
		return model.Task{}, Invalid
	}

	t, err := f.backend.AddTask(ctx, api.TaskInput{Title: v.Title, Description: v.Description})
	if err != nil {
		f.log.Error("add task", zap.Error(err))
		f.ports.Alert(msgAddTaskFailed)
		return model.Task{}, Failed
	}
	f.ports.AppendFlat(t)
	f.ports.ResetTaskForm()
	f.ports.ClosePopup()
	_ = f.sync.RefreshGrouped(ctx)
	return t, Succeeded
}
