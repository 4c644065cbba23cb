package cli

import (
	"errors"

	"todo-cli/internal/api"
	"todo-cli/internal/app"
	"todo-cli/internal/format"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *App) *cobra.Command {
	var v app.RegisterValues

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := ctl.Register.Submit(cmd.Context(), v)
			if res != app.Succeeded {
				return formFailure(cmd, a, p, string(app.FormRegister), res)
			}
			return writeOut(cmd, a, format.Envelope{Data: map[string]any{
				"username": v.Username,
				"view":     p.view.String(),
			}})
		},
	}

	cmd.Flags().StringVar(&v.Username, "username", "", "Username")
	cmd.Flags().StringVar(&v.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&v.Password, "password", envOr("TODO_PASSWORD", ""), "Password (or TODO_PASSWORD)")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	var v app.LoginValues

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print both task lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := ctl.Login.Submit(cmd.Context(), v)
			if res != app.Succeeded {
				return formFailure(cmd, a, p, string(app.FormLogin), res)
			}
			return writeOut(cmd, a, format.Envelope{Data: sessionData(ctl, p)})
		},
	}

	cmd.Flags().StringVar(&v.Username, "username", "", "Username")
	cmd.Flags().StringVar(&v.Password, "password", envOr("TODO_PASSWORD", ""), "Password (or TODO_PASSWORD)")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			// The local session ends even when the service call fails.
			_ = ctl.Session.Logout(cmd.Context())
			return writeOut(cmd, a, format.Envelope{Data: map[string]any{"view": p.view.String()}})
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, p, err := a.controller(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = ctl.Session.Init(cmd.Context())
			if ctl.Session.State().View != app.ViewMainApp {
				if api.StatusOf(err) != 0 {
					_ = writeOut(cmd, a, format.Envelope{Data: map[string]any{"view": p.view.String(), "user": nil}})
					return writeErr(cmd, errors.New("not logged in"))
				}
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, format.Envelope{Data: sessionData(ctl, p)})
		},
	}
}

func sessionData(ctl *app.Controller, p *cliPorts) map[string]any {
	out := p.listsData()
	out["view"] = p.view.String()
	if st := ctl.Session.State(); st.User != nil {
		out["user"] = st.User
	}
	return out
}

// formFailure reports a rejected or failed submit. Field errors go to stdout in an
// errors envelope; alerts were already written to stderr.
func formFailure(cmd *cobra.Command, a *App, p *cliPorts, form string, res app.SubmitResult) error {
	if len(p.fieldErrs) > 0 {
		if err := writeOut(cmd, a, format.ErrorEnvelope{Errors: p.fieldErrs}); err != nil {
			return err
		}
		if res == app.Invalid {
			return errInvalid
		}
		return fieldError{form: form, fields: p.fieldErrs}
	}
	if res == app.Invalid {
		return writeErr(cmd, errInvalid)
	}
	return errors.New(form + " failed")
}
