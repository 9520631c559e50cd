package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Run serves HTTP and runs the scheduler until SIGINT or SIGTERM, then shuts
// down within app.shutdown_timeout_seconds. A listener failure is returned
// after the same graceful shutdown.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return err
	}
	serveErr := a.Serve(l)
	slog.Info("http server listening", "address", l.Addr().String())

	a.scheduler.Start()
	slog.Info("scheduler started", "entries", len(a.scheduler.Entries()))

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.GetSecond("app.shutdown_timeout_seconds"))
	defer cancel()
	a.Stop(shutdownCtx)

	return runErr
}

// Serve runs the HTTP server on l until it is shut down.
func (a *App) Serve(l net.Listener) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- a.httpServer.Serve(l) }()
	return errc
}

// Stop drains HTTP, waits for running cron jobs and background goroutines,
// then releases resources. ctx bounds the HTTP and cron waits.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "http server shutdown", "error", err)
	}

	select {
	case <-a.scheduler.Stop().Done():
	case <-ctx.Done():
		slog.WarnContext(ctx, "scheduler jobs still running at deadline")
	}

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background task failed", "error", err)
	}

	for _, c := range a.closers {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	slog.InfoContext(ctx, "application stopped")
}
