package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
)

const shutdownGrace = 10 * time.Second

// Serve runs the HTTP API, the snapshot scheduler, the editor idle sweep
// and, when an import directory is configured, the import watcher until ctx
// is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.snapshots.Start(ctx); err != nil {
		return err
	}
	sweep := a.startEditorSweep()
	defer sweep.Stop()
	if a.cfg.Import.Dir != "" {
		if err := a.imports.Watch(ctx, a.cfg.Import.Dir); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// editorSweepInterval bounds how long past its idle timeout a session lives.
const editorSweepInterval = time.Minute

func (a *App) startEditorSweep() *cron.Cron {
	c := cron.New()
	idle := a.cfg.Editor.IdleTimeout
	c.Schedule(cron.Every(editorSweepInterval), cron.FuncJob(func() {
		a.editor.CloseIdle(idle)
	}))
	c.Start()
	return c
}
