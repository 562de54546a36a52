package httpapi

import (
	"net/http"
	"strconv"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request, user *domain.User) {
	docs, err := s.svc.Documents.SearchDocuments(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in service.CreateDocumentInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	doc, err := s.svc.Documents.CreateDocument(r.Context(), user.ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request, user *domain.User) {
	doc, err := s.svc.Documents.GetDocument(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in service.UpdateDocumentInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.svc.Documents.UpdateDocument(r.Context(), user.ID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id := r.PathValue("id")
	if err := s.svc.Documents.DeleteDocument(r.Context(), user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Editor.CloseDocument(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in service.PublishInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	doc, err := s.svc.Documents.Publish(r.Context(), user.ID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request, user *domain.User) {
	doc, err := s.svc.Documents.Unpublish(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request, user *domain.User) {
	versions, err := s.svc.Documents.ListVersions(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleSnapshotVersion(w http.ResponseWriter, r *http.Request, user *domain.User) {
	v, err := s.svc.Documents.SnapshotVersion(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleRestoreVersion(w http.ResponseWriter, r *http.Request, user *domain.User) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		s.writeError(w, r, badRequest{"version number must be a positive integer"})
		return
	}
	doc, err := s.svc.Documents.RestoreVersion(r.Context(), user.ID, r.PathValue("id"), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.GetPublished(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errIsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		s.writeError(w, r, err)
		return
	}
	page, err := s.svc.Renderer.PublicPage(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
