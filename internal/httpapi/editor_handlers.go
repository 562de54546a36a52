package httpapi

import (
	"net/http"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"
)

type openEditorRequest struct {
	DocumentID string            `json:"document_id"`
	Mode       domain.EditorMode `json:"mode"`
}

func (s *Server) handleOpenEditor(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var req openEditorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.DocumentID == "" {
		s.writeError(w, r, badRequest{"document_id is required"})
		return
	}
	es, err := s.svc.Editor.Open(r.Context(), user.ID, req.DocumentID, req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, es.View())
}

func (s *Server) handleGetEditor(w http.ResponseWriter, r *http.Request, user *domain.User) {
	es, err := s.svc.Editor.Session(user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, es.View())
}

func (s *Server) handleCloseEditor(w http.ResponseWriter, r *http.Request, user *domain.User) {
	if err := s.svc.Editor.Close(user.ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApplyOp(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var op service.Op
	if err := decodeJSON(r, &op); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Editor.Apply(r.Context(), user.ID, r.PathValue("id"), op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleWriteMarkdown(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var req struct {
		Markdown string `json:"markdown"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Editor.WriteMarkdown(r.Context(), user.ID, r.PathValue("id"), req.Markdown)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSwitchMode(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var req struct {
		Mode domain.EditorMode `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Editor.SwitchMode(r.Context(), user.ID, r.PathValue("id"), req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Editor.SetTitle(r.Context(), user.ID, r.PathValue("id"), req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
