package cli

import (
	"context"
	"strings"

	"todo-cli/internal/app"
	"todo-cli/internal/format"
	"todo-cli/internal/model"

	"github.com/spf13/cobra"
)

func newTasksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(a))
	cmd.AddCommand(newTasksAddCmd(a))
	cmd.AddCommand(newTasksEditCmd(a))
	cmd.AddCommand(newTasksRmCmd(a))
	cmd.AddCommand(newTasksToggleCmd(a))
	return cmd
}

func newTasksListCmd(a *App) *cobra.Command {
	var grouped bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in server order (or grouped by status)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if grouped {
				if err := ctl.Sync.RefreshGrouped(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, a, format.Envelope{Data: map[string]any{
					"inProgress": nonNil(p.inProgress),
					"completed":  nonNil(p.completed),
				}})
			}
			if err := ctl.Sync.RefreshFlat(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, format.Envelope{Data: nonNil(p.flat)})
		},
	}

	cmd.Flags().BoolVar(&grouped, "grouped", false, "Split into in-progress and completed")
	return cmd
}

func newTasksAddCmd(a *App) *cobra.Command {
	var v app.TaskValues

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, res := ctl.AddTask.Submit(cmd.Context(), v)
			switch res {
			case app.Invalid:
				return writeErr(cmd, errInvalid)
			case app.Failed:
				return formFailure(cmd, a, p, string(app.FormTask), res)
			}
			data := p.listsData()
			data["task"] = task
			return writeOut(cmd, a, format.Envelope{Data: data})
		},
	}

	cmd.Flags().StringVar(&v.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&v.Description, "description", "", "Task description")
	return cmd
}

func newTasksEditCmd(a *App) *cobra.Command {
	var (
		title   string
		desc    string
		checked bool
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change a task's title and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := findTask(cmd.Context(), a, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("title") {
				p.answers["Edit Title:"] = title
			}
			if cmd.Flags().Changed("description") {
				p.answers["Edit Description:"] = desc
			}
			if cmd.Flags().Changed("checked") {
				task.Status = model.StatusFromChecked(checked)
			}
			if strings.TrimSpace(answerOr(p, "Edit Title:", task.Title)) == "" ||
				strings.TrimSpace(answerOr(p, "Edit Description:", task.Description)) == "" {
				return writeErr(cmd, errInvalid)
			}
			if err := ctl.Sync.Edit(cmd.Context(), task); err != nil {
				return err
			}
			return writeOut(cmd, a, format.Envelope{Data: p.listsData()})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title (default: keep)")
	cmd.Flags().StringVar(&desc, "description", "", "New description (default: keep)")
	cmd.Flags().BoolVar(&checked, "checked", false, "Status to send with the update (default: current)")
	return cmd
}

func newTasksRmCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task (asks for confirmation)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := findTask(cmd.Context(), a, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p.assumeYes = yes
			if err := ctl.Sync.Delete(cmd.Context(), task); err != nil {
				return err
			}
			if p.declined {
				return writeOut(cmd, a, format.Envelope{Data: map[string]any{"deleted": false}})
			}
			data := p.listsData()
			data["deleted"] = true
			return writeOut(cmd, a, format.Envelope{Data: data})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newTasksToggleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between in-progress and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := findTask(cmd.Context(), a, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctl.Sync.Toggle(cmd.Context(), task); err != nil {
				return err
			}
			return writeOut(cmd, a, format.Envelope{Data: p.listsData()})
		},
	}
}

// findTask reads the task's current row from a fresh list, the way a row on screen
// carries its title, description and checkbox state.
func findTask(ctx context.Context, a *App, rawID string) (model.Task, error) {
	client, _, err := a.openClient(ctx)
	if err != nil {
		return model.Task{}, err
	}
	tasks, err := client.ListTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	id := model.TaskID(strings.TrimSpace(rawID))
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, errNotFound("task", id.String())
}

func answerOr(p *cliPorts, label, initial string) string {
	if v, ok := p.answers[label]; ok {
		return v
	}
	return initial
}
