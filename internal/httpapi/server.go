// Package httpapi serves the browser-facing JSON API, published pages,
// uploaded media and the live event stream.
package httpapi

import (
	"net/http"

	"blocknotes/internal/blobstore"
	"blocknotes/internal/render"
	"blocknotes/internal/service"

	"github.com/rs/zerolog"
)

// Services are the application services the API exposes.
type Services struct {
	Auth      *service.AuthService
	Documents *service.DocumentService
	Editor    *service.EditorService
	Websites  *service.WebsiteService
	Media     *service.MediaService
	Blobs     blobstore.Store
	Renderer  *render.Renderer
}

type Server struct {
	mux           *http.ServeMux
	svc           Services
	hub           *Hub
	log           zerolog.Logger
	allowedOrigin string
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithAllowedOrigin restricts CORS to origin. "*" or empty echoes the
// request origin.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		s.allowedOrigin = origin
	}
}

// WithHub streams events from hub on /api/events.
func WithHub(hub *Hub) Option {
	return func(s *Server) {
		if hub != nil {
			s.hub = hub
		}
	}
}

func New(svc Services, opts ...Option) *Server {
	s := &Server{
		mux: http.NewServeMux(),
		svc: svc,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = NewHub(s.log)
	}
	s.routes()
	return s
}

// Hub returns the event hub, which is also the services' EventEmitter.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	s.mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	s.mux.HandleFunc("POST /api/auth/signout", s.authed(s.handleSignOut))
	s.mux.HandleFunc("GET /api/auth/session", s.authed(s.handleGetSession))
	s.mux.HandleFunc("PATCH /api/auth/profile", s.authed(s.handleUpdateProfile))

	s.mux.HandleFunc("GET /api/documents", s.authed(s.handleListDocuments))
	s.mux.HandleFunc("POST /api/documents", s.authed(s.handleCreateDocument))
	s.mux.HandleFunc("GET /api/documents/{id}", s.authed(s.handleGetDocument))
	s.mux.HandleFunc("PATCH /api/documents/{id}", s.authed(s.handleUpdateDocument))
	s.mux.HandleFunc("DELETE /api/documents/{id}", s.authed(s.handleDeleteDocument))
	s.mux.HandleFunc("POST /api/documents/{id}/publish", s.authed(s.handlePublish))
	s.mux.HandleFunc("DELETE /api/documents/{id}/publish", s.authed(s.handleUnpublish))
	s.mux.HandleFunc("GET /api/documents/{id}/versions", s.authed(s.handleListVersions))
	s.mux.HandleFunc("POST /api/documents/{id}/versions", s.authed(s.handleSnapshotVersion))
	s.mux.HandleFunc("POST /api/documents/{id}/versions/{n}/restore", s.authed(s.handleRestoreVersion))

	s.mux.HandleFunc("POST /api/editor/sessions", s.authed(s.handleOpenEditor))
	s.mux.HandleFunc("GET /api/editor/sessions/{id}", s.authed(s.handleGetEditor))
	s.mux.HandleFunc("DELETE /api/editor/sessions/{id}", s.authed(s.handleCloseEditor))
	s.mux.HandleFunc("POST /api/editor/sessions/{id}/ops", s.authed(s.handleApplyOp))
	s.mux.HandleFunc("PUT /api/editor/sessions/{id}/markdown", s.authed(s.handleWriteMarkdown))
	s.mux.HandleFunc("PUT /api/editor/sessions/{id}/mode", s.authed(s.handleSwitchMode))
	s.mux.HandleFunc("PUT /api/editor/sessions/{id}/title", s.authed(s.handleSetTitle))

	s.mux.HandleFunc("GET /api/websites", s.authed(s.handleListWebsites))
	s.mux.HandleFunc("POST /api/websites", s.authed(s.handleCreateWebsite))
	s.mux.HandleFunc("GET /api/websites/{id}/pages", s.authed(s.handleListPages))
	s.mux.HandleFunc("POST /api/websites/{id}/pages", s.authed(s.handleAddPage))

	s.mux.HandleFunc("GET /api/media", s.authed(s.handleListMedia))
	s.mux.HandleFunc("POST /api/media", s.authed(s.handleUploadMedia))
	s.mux.HandleFunc("DELETE /api/media/{id}", s.authed(s.handleDeleteMedia))
	s.mux.HandleFunc("GET /media/{path...}", s.handleServeMedia)

	s.mux.HandleFunc("GET /published/{slug}", s.handlePublished)
	s.mux.HandleFunc("GET /api/events", s.authed(s.handleEvents))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	switch {
	case origin == "":
	case s.allowedOrigin == "" || s.allowedOrigin == "*" || s.allowedOrigin == origin:
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
	}

	allowedHeaders := r.Header.Get("Access-Control-Request-Headers")
	if allowedHeaders == "" {
		allowedHeaders = "Content-Type, Accept, Authorization"
	}
	w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.mux.ServeHTTP(w, r)
}
