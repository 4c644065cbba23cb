package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"todo-cli/internal/api"
	"todo-cli/internal/model"

	"go.uber.org/zap"
)

// Sync keeps the flat and grouped task lists in line with the service. Every
// successful mutation is followed by a full re-fetch.
type Sync struct {
	backend Backend
	ports   Ports
	log     *zap.Logger
}

// Partition splits tasks by status, keeping server order within each part.
func Partition(tasks []model.Task) (inProgress, completed []model.Task) {
	inProgress = []model.Task{}
	completed = []model.Task{}
	for _, t := range tasks {
		if t.Checked() {
			completed = append(completed, t)
		} else {
			inProgress = append(inProgress, t)
		}
	}
	return inProgress, completed
}

func (s *Sync) RefreshFlat(ctx context.Context) error {
	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		s.log.Error("fetch tasks", zap.String("list", "flat"), zap.Error(err))
		return err
	}
	s.ports.RenderFlat(tasks)
	return nil
}

func (s *Sync) RefreshGrouped(ctx context.Context) error {
	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		s.log.Error("fetch tasks", zap.String("list", "grouped"), zap.Error(err))
		return err
	}
	s.ports.RenderGrouped(Partition(tasks))
	return nil
}

// RefreshAll re-fetches the flat list, then the grouped list. The two fetches are
// independent; a failed second fetch leaves the first render in place.
func (s *Sync) RefreshAll(ctx context.Context) error {
	flatErr := s.RefreshFlat(ctx)
	groupedErr := s.RefreshGrouped(ctx)
	return errors.Join(flatErr, groupedErr)
}

// Delete asks for confirmation, then deletes task. A declined confirmation returns nil
// without any request.
func (s *Sync) Delete(ctx context.Context, task model.Task) error {
	msg := fmt.Sprintf("Are you sure you want to delete the task \"%s\"?", task.Title)
	if !s.ports.Confirm(ctx, msg) {
		return nil
	}
	if err := s.backend.DeleteTask(ctx, task.ID); err != nil {
		s.fail("delete task", "Failed to delete task", task.ID, err)
		return err
	}
	return s.RefreshAll(ctx)
}

// Edit prompts for a new title and description and saves them with the status the
// caller currently displays for task. Both prompts are always asked; an empty or
// cancelled answer to either sends nothing.
func (s *Sync) Edit(ctx context.Context, task model.Task) error {
	title, titleOK := s.ports.Prompt(ctx, "Edit Title:", task.Title)
	desc, descOK := s.ports.Prompt(ctx, "Edit Description:", task.Description)
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	if !titleOK || !descOK || title == "" || desc == "" {
		return nil
	}
	return s.Save(ctx, task.ID, title, desc, task.Status)
}

// Save sends an update without prompting. Edit uses it once both answers are in.
func (s *Sync) Save(ctx context.Context, id model.TaskID, title, description string, status model.Status) error {
	in := api.TaskUpdate{
		Title:       title,
		Description: description,
		Status:      model.StatusFromChecked(status.Checked()),
	}
	if _, err := s.backend.UpdateTask(ctx, id, in); err != nil {
		s.fail("update task", "Failed to update task", id, err)
		return err
	}
	return s.RefreshAll(ctx)
}

// Toggle asks the service to flip task's status; the service decides the new value.
func (s *Sync) Toggle(ctx context.Context, task model.Task) error {
	if err := s.backend.MarkTask(ctx, task.ID); err != nil {
		s.fail("mark task", "Failed to update task status", task.ID, err)
		return err
	}
	return s.RefreshAll(ctx)
}

// fail logs err and alerts with the server text when there is one.
func (s *Sync) fail(op, prefix string, id model.TaskID, err error) {
	var se *api.StatusError
	if errors.As(err, &se) {
		s.log.Warn(op, zap.String("id", id.String()), zap.Int("status", se.StatusCode), zap.String("body", se.Body))
		s.ports.Alert(prefix + ": " + se.Message(http.StatusText(se.StatusCode)))
		return
	}
	s.log.Error(op, zap.String("id", id.String()), zap.Error(err))
	s.ports.Alert(prefix + ". Please try again.")
}
