package app

import (
	"context"

	"todo-cli/internal/model"
)

type FormID string

const (
	FormRegister FormID = "register"
	FormLogin    FormID = "login"
	FormTask     FormID = "task"
)

// Input ids, one per form field.
const (
	InputRegisterUsername = "register-username"
	InputRegisterEmail    = "register-email"
	InputRegisterPassword = "register-password"
	InputLoginUsername    = "login-username"
	InputLoginPassword    = "login-password"
	InputTaskTitle        = "taskTitle"
	InputTaskDesc         = "taskDesc"
)

// Ports is the view surface driven by the controllers. Render calls replace what they
// target; AppendFlat adds one row to the flat list.
//
// Confirm and Prompt block until the user answers or ctx is done. A cancelled prompt
// returns ok=false.
type Ports interface {
	ShowView(v View)
	SetProfile(username string)
	ClearErrors(form FormID)
	FieldError(form FormID, inputID, message string)
	RenderFlat(tasks []model.Task)
	AppendFlat(task model.Task)
	RenderGrouped(inProgress, completed []model.Task)
	ResetTaskForm()
	ClosePopup()
	Alert(message string)
	Notice(message string)
	Confirm(ctx context.Context, message string) bool
	Prompt(ctx context.Context, label, initial string) (string, bool)
}
