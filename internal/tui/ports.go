package tui

import (
	"context"

	"todo-cli/internal/app"
	"todo-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// sender is satisfied by *tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// teaPorts turns app.Ports calls into program messages. Confirm and Prompt block the
// calling handler until Update delivers the user's answer.
type teaPorts struct {
	s sender
}

var _ app.Ports = (*teaPorts)(nil)

func (p *teaPorts) ShowView(v app.View)        { p.s.Send(showViewMsg{view: v}) }
func (p *teaPorts) SetProfile(username string) { p.s.Send(setProfileMsg{username: username}) }
func (p *teaPorts) ClearErrors(form app.FormID) {
	p.s.Send(clearErrorsMsg{form: form})
}

func (p *teaPorts) FieldError(form app.FormID, inputID, message string) {
	p.s.Send(fieldErrorMsg{form: form, inputID: inputID, message: message})
}

func (p *teaPorts) RenderFlat(tasks []model.Task) {
	p.s.Send(renderFlatMsg{tasks: append([]model.Task(nil), tasks...)})
}

func (p *teaPorts) AppendFlat(task model.Task) { p.s.Send(appendFlatMsg{task: task}) }

func (p *teaPorts) RenderGrouped(inProgress, completed []model.Task) {
	p.s.Send(renderGroupedMsg{
		inProgress: append([]model.Task(nil), inProgress...),
		completed:  append([]model.Task(nil), completed...),
	})
}

func (p *teaPorts) ResetTaskForm()       { p.s.Send(resetTaskFormMsg{}) }
func (p *teaPorts) ClosePopup()          { p.s.Send(closePopupMsg{}) }
func (p *teaPorts) Alert(message string) { p.s.Send(alertMsg{message: message}) }
func (p *teaPorts) Notice(message string) {
	p.s.Send(noticeMsg{message: message})
}

func (p *teaPorts) Confirm(ctx context.Context, message string) bool {
	reply := make(chan bool, 1)
	p.s.Send(confirmRequestMsg{message: message, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (p *teaPorts) Prompt(ctx context.Context, label, initial string) (string, bool) {
	reply := make(chan promptReply, 1)
	p.s.Send(promptRequestMsg{label: label, initial: initial, reply: reply})
	select {
	case r := <-reply:
		return r.value, r.ok
	case <-ctx.Done():
		return "", false
	}
}
