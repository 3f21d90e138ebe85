package sitebuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
)

const shutdownGrace = 5 * time.Second

// serve blocks, serving s.Root on s.Port until ctx is cancelled.
// Cancellation is the normal way out and is not an error.
func serve(ctx context.Context, s Serve) error {
	stat, err := os.Stat(s.Root)
	if err != nil {
		return fmt.Errorf("failed to stat serve root '%s': %w", s.Root, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("serve root is not a directory: '%s'", s.Root)
	}

	addr := fmt.Sprintf(":%d", s.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind '%s': %w", addr, err)
	}

	logger := slog.Default().WithGroup("serve").With("root", s.Root, "addr", ln.Addr().String())
	srv := &http.Server{
		Handler:           logRequests(logger, http.FileServer(http.Dir(s.Root))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	logger.Info("serving, interrupt to stop")

	select {
	case err := <-errs:
		return fmt.Errorf("preview server stopped: %w", err)

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to stop preview server: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// serveCommand runs an external file server until it exits or ctx is
// cancelled. Being stopped by cancellation is not an error.
func (e *Executor) serveCommand(ctx context.Context, s Serve) error {
	stat, err := os.Stat(s.Root)
	if err != nil {
		return fmt.Errorf("failed to stat serve root '%s': %w", s.Root, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("serve root is not a directory: '%s'", s.Root)
	}

	argv, err := splitCommand(s.CommandLine)
	if err != nil {
		return err
	}

	slog.Default().WithGroup("serve").Info("starting preview command", "root", s.Root, "command", s.CommandLine)

	_, err = e.Commander.Run(ctx, Command{
		Name: argv[0],
		Args: argv[1:],
	})
	if ctx.Err() != nil {
		return nil
	}

	return err
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
