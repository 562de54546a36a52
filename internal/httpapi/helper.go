package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"blocknotes/internal/blobstore"
	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxJSONBody = 4 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
}

// badRequest marks malformed requests rejected before reaching a service.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fields validation.Errors
		bad    badRequest
	)
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
	case errors.As(err, &bad):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: bad.msg})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "email already registered"})
	case errors.Is(err, domain.ErrConflict):
		s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("request conflicted")
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict"})
	case errors.Is(err, service.ErrWrongMode), errors.Is(err, service.ErrUnknownOp),
		errors.Is(err, service.ErrInvalidBlockType), errors.Is(err, blobstore.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest{"request body is empty"}
		}
		return badRequest{fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// bearerToken reads the session token from the Authorization header, or from
// the token query parameter for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

type ctxKey struct{}

type principal struct {
	user  *domain.User
	token string
}

// UserIDFromContext returns the authenticated user of a request context.
func UserIDFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ctxKey{}).(principal); ok {
		return p.user.ID
	}
	return ""
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user *domain.User)

// authed resolves the bearer token before calling next.
func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		_, user, err := s.svc.Auth.GetSession(r.Context(), token)
		if err != nil {
			s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, principal{user: user, token: token})
		next(w, r.WithContext(ctx), user)
	}
}

func tokenFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ctxKey{}).(principal); ok {
		return p.token
	}
	return ""
}
