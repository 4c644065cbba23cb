package app

import (
	"context"
	"sync"

	"todo-cli/internal/model"
)

type FieldErr struct {
	Form    FormID
	InputID string
	Message string
}

// PromptAnswer is one scripted reply to Prompt.
type PromptAnswer struct {
	Value string
	OK    bool
}

// RecordingPorts is a Ports that remembers every call. Confirm returns ConfirmAnswer;
// Prompt pops PromptAnswers in order and cancels when they run out.
type RecordingPorts struct {
	mu sync.Mutex

	ConfirmAnswer bool
	PromptAnswers []PromptAnswer

	Calls       []string
	Views       []View
	Profile     string
	Cleared     []FormID
	FieldErrors []FieldErr

	Flat           []model.Task
	FlatRenders    int
	Appended       []model.Task
	InProgress     []model.Task
	Completed      []model.Task
	GroupedRenders int

	Resets   int
	Closes   int
	Alerts   []string
	Notices  []string
	Confirms []string
	Prompts  []string
}

var _ Ports = (*RecordingPorts)(nil)

func (p *RecordingPorts) record(name string) {
	p.Calls = append(p.Calls, name)
}

// CallNames returns a copy of the call log.
func (p *RecordingPorts) CallNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Calls...)
}

// CurrentView returns the last view shown, or ViewLanding when none was.
func (p *RecordingPorts) CurrentView() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Views) == 0 {
		return ViewLanding
	}
	return p.Views[len(p.Views)-1]
}

func (p *RecordingPorts) ShowView(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ShowView")
	p.Views = append(p.Views, v)
}

func (p *RecordingPorts) SetProfile(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetProfile")
	p.Profile = username
}

func (p *RecordingPorts) ClearErrors(form FormID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ClearErrors")
	p.Cleared = append(p.Cleared, form)
	kept := p.FieldErrors[:0]
	for _, fe := range p.FieldErrors {
		if fe.Form != form {
			kept = append(kept, fe)
		}
	}
	p.FieldErrors = kept
}

func (p *RecordingPorts) FieldError(form FormID, inputID, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("FieldError")
	p.FieldErrors = append(p.FieldErrors, FieldErr{Form: form, InputID: inputID, Message: message})
}

func (p *RecordingPorts) RenderFlat(tasks []model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("RenderFlat")
	p.Flat = append([]model.Task{}, tasks...)
	p.FlatRenders++
}

func (p *RecordingPorts) AppendFlat(task model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("AppendFlat")
	p.Flat = append(p.Flat, task)
	p.Appended = append(p.Appended, task)
}

func (p *RecordingPorts) RenderGrouped(inProgress, completed []model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("RenderGrouped")
	p.InProgress = append([]model.Task{}, inProgress...)
	p.Completed = append([]model.Task{}, completed...)
	p.GroupedRenders++
}

func (p *RecordingPorts) ResetTaskForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ResetTaskForm")
	p.Resets++
}

func (p *RecordingPorts) ClosePopup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ClosePopup")
	p.Closes++
}

func (p *RecordingPorts) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Alert")
	p.Alerts = append(p.Alerts, message)
}

func (p *RecordingPorts) Notice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Notice")
	p.Notices = append(p.Notices, message)
}

func (p *RecordingPorts) Confirm(_ context.Context, message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Confirm")
	p.Confirms = append(p.Confirms, message)
	return p.ConfirmAnswer
}

func (p *RecordingPorts) Prompt(_ context.Context, label, _ string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Prompt")
	p.Prompts = append(p.Prompts, label)
	if len(p.PromptAnswers) == 0 {
		return "", false
	}
	a := p.PromptAnswers[0]
	p.PromptAnswers = p.PromptAnswers[1:]
	return a.Value, a.OK
}
