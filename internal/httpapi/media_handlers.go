package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"
)

func errIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request, user *domain.User) {
	files, err := s.svc.Media.ListMedia(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// handleUploadMedia accepts a multipart form with a "file" part plus
// optional document_id and alt_text fields.
func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request, user *domain.User) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, badRequest{"invalid multipart form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, badRequest{"file part is required"})
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(path.Ext(header.Filename))
	}
	m, err := s.svc.Media.Upload(r.Context(), user.ID, service.UploadInput{
		DocumentID: r.FormValue("document_id"),
		Filename:   header.Filename,
		MimeType:   mimeType,
		AltText:    r.FormValue("alt_text"),
		Body:       file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request, user *domain.User) {
	if err := s.svc.Media.DeleteMedia(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	p := r.PathValue("path")
	rc, err := s.svc.Blobs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	h := w.Header()
	ct := mime.TypeByExtension(path.Ext(p))
	if servedInline(ct) {
		h.Set("Content-Type", ct)
	} else {
		h.Set("Content-Type", "application/octet-stream")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(p)}))
	}
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'; sandbox")
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(p), time.Time{}, rs)
		return
	}
	io.Copy(w, rc)
}

// servedInline reports whether a media type is safe to render from the
// app origin. Anything that can carry script is downloaded instead.
func servedInline(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case mt == "image/svg+xml":
		return false
	case strings.HasPrefix(mt, "image/"), strings.HasPrefix(mt, "video/"), strings.HasPrefix(mt, "audio/"):
		return true
	case mt == "application/pdf":
		return true
	}
	return false
}
