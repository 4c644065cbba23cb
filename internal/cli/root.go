package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"todo-cli/internal/api"
	"todo-cli/internal/app"
	"todo-cli/internal/config"
	"todo-cli/internal/format"
	"todo-cli/internal/logging"
	"todo-cli/internal/store"
	"todo-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigDir  string
	BaseURL    string
	Format     string
	PrettyJSON bool
	LogFile    string
	LogLevel   string
	Timeout    time.Duration
	Theme      string

	cfg        *config.Config
	configPath string
	log        *zap.Logger
	jar        *store.CookieJar
	client     *api.Client
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Task list client (TUI + scriptable CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo

  # Scriptable commands
  todo login --username ann --password secret
  todo tasks add --title "Buy milk" --description "2L, oat"
  todo tasks list --grouped

  # Talk to a local mock backend
  todo mock-server --addr 127.0.0.1:8080 &
  todo --base-url http://127.0.0.1:8080/api whoami
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, a)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&a.ConfigDir, "config-dir", envOr("TODO_CONFIG_DIR", ""), "Config directory (default ~/.todo)")
	cmd.PersistentFlags().StringVar(&a.BaseURL, "base-url", "", "API base URL (default "+api.DefaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&a.Format, "format", "json", "Output format (json|edn)")
	cmd.PersistentFlags().BoolVar(&a.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&a.LogFile, "log-file", "", "Write JSON logs to this file")
	cmd.PersistentFlags().StringVar(&a.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().DurationVar(&a.Timeout, "timeout", 0, "Per-request timeout (0 = none)")
	cmd.PersistentFlags().StringVar(&a.Theme, "theme", "auto", "TUI palette (auto|light|dark)")

	cmd.AddCommand(newRegisterCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newTasksCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newMockServerCmd(a))

	return cmd
}

// setup loads config and the logger. The API client is opened lazily by commands
// that need one.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, path, err := config.Load(config.LoadOptions{Dir: a.ConfigDir, Flags: cmd.Flags()})
	if err != nil {
		return writeErr(cmd, err)
	}
	a.cfg = cfg
	a.configPath = path
	a.Format = cfg.Format

	log, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return writeErr(cmd, err)
	}
	a.log = log.With(zap.String("cmd", cmd.CommandPath()))
	return nil
}

func (a *App) close() {
	if a.jar != nil {
		if err := a.jar.Close(); err != nil {
			a.logger().Warn("close cookie jar", zap.Error(err))
		}
		a.jar = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *App) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

func (a *App) settings() *config.Config {
	if a.cfg == nil {
		return config.Default()
	}
	return a.cfg
}

// openClient returns the API client sharing the persistent cookie jar.
func (a *App) openClient(ctx context.Context) (*api.Client, *store.CookieJar, error) {
	if a.client != nil {
		return a.client, a.jar, nil
	}
	cfg := a.settings()
	s, err := store.Open(a.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	jar, err := s.OpenCookieJar(ctx, a.logger())
	if err != nil {
		return nil, nil, fmt.Errorf("open cookie jar: %w", err)
	}
	client, err := api.New(api.Options{
		BaseURL: cfg.BaseURL,
		Jar:     jar,
		Logger:  a.logger(),
		Timeout: cfg.Timeout,
	})
	if err != nil {
		_ = jar.Close()
		return nil, nil, err
	}
	a.jar = jar
	a.client = client
	return client, jar, nil
}

// controller wires the session and sync rules to the command's textual ports.
func (a *App) controller(cmd *cobra.Command) (*app.Controller, *cliPorts, error) {
	client, jar, err := a.openClient(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	p := newCLIPorts(cmd)
	ctl := app.New(app.Options{Backend: client, Ports: p, Logger: a.logger(), Cookies: jar.ForURL(client.BaseURL())})
	return ctl, p, nil
}

func runTUI(cmd *cobra.Command, a *App) error {
	client, jar, err := a.openClient(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	s, err := store.Open(a.ConfigDir)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), tui.Options{
		Backend: client,
		Cookies: jar.ForURL(client.BaseURL()),
		Logger:  a.logger(),
		Store:   s,
		Theme:   a.settings().Theme,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, a.Format, a.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
