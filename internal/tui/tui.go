// Package tui is the full-screen terminal client. Controller calls run off the event
// loop and report back through program messages.
package tui

import (
	"context"

	"todo-cli/internal/app"
	"todo-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Backend app.Backend
	Cookies app.CookieClearer
	Logger  *zap.Logger
	Store   store.Store
	// Theme is auto, light or dark.
	Theme string
}

func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	prefs, err := opts.Store.LoadTUIPrefs()
	if err != nil {
		log.Warn("load tui prefs", zap.Error(err))
		prefs = nil
	}

	ports := &teaPorts{}
	ctl := app.New(app.Options{
		Backend: opts.Backend,
		Ports:   ports,
		Logger:  log,
		Cookies: opts.Cookies,
	})
	m := newAppModel(ctx, ctl, opts.Store, prefs, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	ports.s = p
	_, err = p.Run()
	return err
}
