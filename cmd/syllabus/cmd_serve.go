package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/syllabus/internal/mcp"
	"github.com/felixgeelhaar/syllabus/internal/viewer"
)

func (a *app) cmdServe() error {
	srv, err := viewer.NewServer(viewer.ServerConfig{
		Addr:     a.cfg.Addr(),
		Version:  Version,
		Catalog:  a.catalog,
		Progress: a.progress,
		Renderer: a.renderer,
	})
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()
	fmt.Fprintf(a.errOut, "Lesson viewer running at http://%s/\n", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received signal", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("viewer stopped")
	return nil
}

func (a *app) cmdMCP() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(mcp.Config{
		Version:  Version,
		Catalog:  a.catalog,
		Progress: a.progress,
		Renderer: a.renderer,
	})

	slog.Debug("starting MCP server on stdio")
	return srv.ServeStdio(ctx)
}
