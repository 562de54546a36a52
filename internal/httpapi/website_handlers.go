package httpapi

import (
	"net/http"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"
)

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request, user *domain.User) {
	sites, err := s.svc.Websites.ListWebsites(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in service.CreateWebsiteInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	site, err := s.svc.Websites.CreateWebsite(r.Context(), user.ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request, user *domain.User) {
	pages, err := s.svc.Websites.ListPages(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in service.AddPageInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.svc.Websites.AddPage(r.Context(), user.ID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}
