// Package app wires configuration, storage and services into the runnable
// server, MCP and import entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blocknotes/internal/blobstore"
	"blocknotes/internal/config"
	"blocknotes/internal/domain"
	"blocknotes/internal/httpapi"
	"blocknotes/internal/logging"
	"blocknotes/internal/render"
	"blocknotes/internal/service"
	"blocknotes/internal/storage"
	"blocknotes/internal/storage/mongostore"

	"github.com/rs/zerolog"
)

// App owns the storage backend and every service built on it.
type App struct {
	cfg config.Config
	log zerolog.Logger

	stores     domain.Stores
	closeStore func(context.Context) error

	hub       *httpapi.Hub
	blobs     *blobstore.LocalStore
	renderer  *render.Renderer
	auth      *service.AuthService
	documents *service.DocumentService
	editor    *service.EditorService
	websites  *service.WebsiteService
	media     *service.MediaService
	snapshots *service.SnapshotService
	imports   *service.ImportService
}

// New creates an App. Nothing is opened until Startup.
func New(cfg config.Config, log zerolog.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Startup opens the configured backend and builds the services.
func (a *App) Startup(ctx context.Context) error {
	if err := a.openStore(ctx); err != nil {
		return err
	}

	blobs, err := blobstore.NewLocalStore(a.cfg.MediaDir(), a.cfg.HTTP.PublicBaseURL)
	if err != nil {
		a.closeStore(ctx)
		return fmt.Errorf("open media store: %w", err)
	}
	a.blobs = blobs
	a.renderer = render.New()
	a.hub = httpapi.NewHub(a.log)
	events := service.MultiEmitter{a.hub, eventLog{logging.Component(a.log, "events")}}

	a.auth = service.NewAuthService(a.stores.Users, a.stores.Sessions, events, a.log, a.cfg.Auth.SessionTTL)
	a.auth.OnSessionChange(func(c service.SessionChange) {
		a.log.Info().Str("component", "audit").Str("user_id", c.UserID).Str("kind", string(c.Kind)).Msg("session changed")
		if c.Kind == service.SessionSignedOut {
			a.editor.CloseUser(c.UserID)
		}
	})
	a.documents = service.NewDocumentService(a.stores.Documents, a.stores.Versions, events, a.log, a.cfg.HTTP.PublicBaseURL)
	a.editor = service.NewEditorService(a.documents, a.log)
	a.websites = service.NewWebsiteService(a.stores.Websites, a.documents)
	a.media = service.NewMediaService(a.stores.Media, blobs, a.log)
	a.snapshots = service.NewSnapshotService(a.stores.Documents, a.stores.Versions, a.documents, a.log, a.cfg.Snapshot.Schedule)
	a.imports = service.NewImportService(a.stores.Users, a.documents, events, a.log, a.cfg.Import.OwnerEmail)
	return nil
}

// eventLog records every emitted event at debug level.
type eventLog struct {
	log zerolog.Logger
}

func (e eventLog) Emit(_ context.Context, event string, _ any) {
	e.log.Debug().Str("event", event).Msg("emitted")
}

func (a *App) openStore(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case "mongodb":
		ms, err := mongostore.Open(ctx, a.cfg.Storage.DSN, "")
		if err != nil {
			return err
		}
		a.stores = ms.Stores()
		a.closeStore = ms.Close
	default:
		db, err := storage.Open(storage.Config{
			Driver: storage.Dialect(a.cfg.Storage.Driver),
			DSN:    a.cfg.Storage.DSN,
			Path:   a.cfg.Storage.Path,
		})
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		a.stores = db.Stores()
		a.closeStore = func(context.Context) error { return db.Close() }
	}
	a.log.Info().Str("driver", a.cfg.Storage.Driver).Msg("storage opened")
	return nil
}

// Shutdown stops background work and closes the backend.
func (a *App) Shutdown(ctx context.Context) error {
	if a.snapshots != nil {
		a.snapshots.Stop()
		a.snapshots.WaitRunning(ctx)
	}
	if a.imports != nil {
		a.imports.Stop()
		a.imports.WaitRunning(ctx)
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.closeStore == nil {
		return nil
	}
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.closeStore(closeCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

// Handler returns the HTTP API backed by the App's services.
func (a *App) Handler() *httpapi.Server {
	return httpapi.New(httpapi.Services{
		Auth:      a.auth,
		Documents: a.documents,
		Editor:    a.editor,
		Websites:  a.websites,
		Media:     a.media,
		Blobs:     a.blobs,
		Renderer:  a.renderer,
	},
		httpapi.WithHub(a.hub),
		httpapi.WithLogger(logging.Component(a.log, "http")),
		httpapi.WithAllowedOrigin(a.cfg.HTTP.AllowedOrigin),
	)
}
