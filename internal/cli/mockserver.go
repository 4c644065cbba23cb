package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"todo-cli/internal/mockserver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMockServerCmd(a *App) *cobra.Command {
	var (
		addr  string
		users []string
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory task service for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mockserver.New(mockserver.Options{Logger: a.logger()})
			for _, spec := range users {
				name, password, ok := strings.Cut(spec, ":")
				if !ok || strings.TrimSpace(name) == "" {
					return writeErr(cmd, fmt.Errorf("invalid --user %q (expected name:password)", spec))
				}
				if err := srv.AddUser(strings.TrimSpace(name), "", password); err != nil {
					return writeErr(cmd, err)
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() { errCh <- hs.Serve(ln) }()

			fmt.Fprintf(cmd.ErrOrStderr(), "mock server listening on http://%s%s\n", ln.Addr(), mockserver.Prefix)
			a.logger().Info("mock server started", zap.String("addr", ln.Addr().String()))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().StringArrayVar(&users, "user", nil, "Seed a user as name:password (repeatable)")
	return cmd
}
