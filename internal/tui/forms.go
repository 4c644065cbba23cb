package tui

import (
	"strings"

	"todo-cli/internal/app"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fieldSpec struct {
	id       string
	label    string
	password bool
}

type formField struct {
	id    string
	label string
	input textinput.Model
	err   string
}

// formModel is a vertical stack of text inputs with one focused field and per-field
// error text keyed by input id.
type formModel struct {
	id     app.FormID
	title  string
	fields []formField
	focus  int
}

func newFormModel(id app.FormID, title string, specs ...fieldSpec) *formModel {
	f := &formModel{id: id, title: title}
	for _, s := range specs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		if s.password {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields = append(f.fields, formField{id: s.id, label: s.label, input: in})
	}
	f.focusField(0)
	return f
}

func newLoginForm() *formModel {
	return newFormModel(app.FormLogin, "Log in",
		fieldSpec{id: app.InputLoginUsername, label: "Username"},
		fieldSpec{id: app.InputLoginPassword, label: "Password", password: true},
	)
}

func newRegisterForm() *formModel {
	return newFormModel(app.FormRegister, "Register",
		fieldSpec{id: app.InputRegisterUsername, label: "Username"},
		fieldSpec{id: app.InputRegisterEmail, label: "Email"},
		fieldSpec{id: app.InputRegisterPassword, label: "Password", password: true},
	)
}

func newTaskForm() *formModel {
	return newFormModel(app.FormTask, "New task",
		fieldSpec{id: app.InputTaskTitle, label: "Title"},
		fieldSpec{id: app.InputTaskDesc, label: "Description"},
	)
}

func (f *formModel) field(id string) *formField {
	for i := range f.fields {
		if f.fields[i].id == id {
			return &f.fields[i]
		}
	}
	return nil
}

func (f *formModel) value(id string) string {
	if fl := f.field(id); fl != nil {
		return fl.input.Value()
	}
	return ""
}

func (f *formModel) setValue(id, v string) {
	if fl := f.field(id); fl != nil {
		fl.input.SetValue(v)
	}
}

// setError attaches msg to the input and moves focus there. Unknown ids are ignored.
func (f *formModel) setError(id, msg string) {
	for i := range f.fields {
		if f.fields[i].id == id {
			f.fields[i].err = msg
			f.focusField(i)
			return
		}
	}
}

func (f *formModel) errorFor(id string) string {
	if fl := f.field(id); fl != nil {
		return fl.err
	}
	return ""
}

func (f *formModel) clearErrors() {
	for i := range f.fields {
		f.fields[i].err = ""
	}
}

func (f *formModel) reset() {
	for i := range f.fields {
		f.fields[i].input.SetValue("")
		f.fields[i].err = ""
	}
	f.focusField(0)
}

func (f *formModel) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}
	f.focus = i
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

func (f *formModel) next() { f.focusField(f.focus + 1) }
func (f *formModel) prev() { f.focusField(f.focus - 1) }

func (f *formModel) onLastField() bool { return f.focus == len(f.fields)-1 }

func (f *formModel) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *formModel) view(bodyW int) string {
	parts := make([]string, 0, len(f.fields))
	for i, fl := range f.fields {
		in := fl.input
		in.Width = bodyW - 3
		parts = append(parts, renderField(bodyW, fl.label, in.View(), i == f.focus, fl.err))
	}
	return strings.Join(parts, "\n\n")
}
