package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"todo-cli/internal/app"
	"todo-cli/internal/model"

	"github.com/spf13/cobra"
)

// cliPorts renders controller output for one command invocation. Lists and field
// errors are collected for the final envelope; alerts and notices go to stderr as
// they happen.
type cliPorts struct {
	stderr io.Writer
	stdin  *bufio.Reader

	// assumeYes answers every confirmation with yes.
	assumeYes bool
	// answers maps prompt labels to scripted replies; unanswered prompts keep the
	// initial value.
	answers map[string]string

	view       app.View
	profile    string
	fieldErrs  map[string]string
	flat       []model.Task
	inProgress []model.Task
	completed  []model.Task
	grouped    bool
	alerts     []string
	notices    []string
	declined   bool
}

var _ app.Ports = (*cliPorts)(nil)

func newCLIPorts(cmd *cobra.Command) *cliPorts {
	return &cliPorts{
		stderr:    cmd.ErrOrStderr(),
		stdin:     bufio.NewReader(cmd.InOrStdin()),
		answers:   map[string]string{},
		fieldErrs: map[string]string{},
	}
}

func (p *cliPorts) ShowView(v app.View)        { p.view = v }
func (p *cliPorts) SetProfile(username string) { p.profile = username }
func (p *cliPorts) ResetTaskForm()             {}
func (p *cliPorts) ClosePopup()                {}

func (p *cliPorts) ClearErrors(app.FormID) {
	p.fieldErrs = map[string]string{}
}

func (p *cliPorts) FieldError(_ app.FormID, inputID, message string) {
	p.fieldErrs[inputID] = message
}

func (p *cliPorts) RenderFlat(tasks []model.Task) {
	p.flat = append([]model.Task{}, tasks...)
}

func (p *cliPorts) AppendFlat(task model.Task) {
	p.flat = append(p.flat, task)
}

func (p *cliPorts) RenderGrouped(inProgress, completed []model.Task) {
	p.inProgress = append([]model.Task{}, inProgress...)
	p.completed = append([]model.Task{}, completed...)
	p.grouped = true
}

func (p *cliPorts) Alert(message string) {
	p.alerts = append(p.alerts, message)
	fmt.Fprintln(p.stderr, message)
}

func (p *cliPorts) Notice(message string) {
	p.notices = append(p.notices, message)
	fmt.Fprintln(p.stderr, message)
}

func (p *cliPorts) Confirm(ctx context.Context, message string) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.stderr, "%s [y/N] ", message)
	line, err := readLine(ctx, p.stdin)
	ok := err == nil && isYes(line)
	p.declined = !ok
	return ok
}

func (p *cliPorts) Prompt(_ context.Context, label, initial string) (string, bool) {
	if v, ok := p.answers[label]; ok {
		return v, true
	}
	return initial, true
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine reads one line, giving up when ctx is done.
func readLine(ctx context.Context, r *bufio.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := r.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- result{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

// listsData is the envelope payload after a sync.
func (p *cliPorts) listsData() map[string]any {
	out := map[string]any{"tasks": nonNil(p.flat)}
	if p.grouped {
		out["inProgress"] = nonNil(p.inProgress)
		out["completed"] = nonNil(p.completed)
	}
	return out
}

func nonNil(ts []model.Task) []model.Task {
	if ts == nil {
		return []model.Task{}
	}
	return ts
}
