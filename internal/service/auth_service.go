package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"blocknotes/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// SessionChangeKind says whether a session started or ended.
type SessionChangeKind string

const (
	SessionSignedIn  SessionChangeKind = "signed_in"
	SessionSignedOut SessionChangeKind = "signed_out"
)

// SessionChange is delivered to OnSessionChange subscribers.
type SessionChange struct {
	Kind   SessionChangeKind `json:"kind"`
	UserID string            `json:"user_id"`
	Token  string            `json:"-"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService manages accounts and bearer-token sessions.
type AuthService struct {
	users    domain.UserStore
	sessions domain.SessionStore
	emitter  EventEmitter
	log      zerolog.Logger
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(SessionChange)
}

func NewAuthService(users domain.UserStore, sessions domain.SessionStore, emitter EventEmitter, log zerolog.Logger, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		emitter:  emitter,
		log:      log.With().Str("component", "auth").Logger(),
		ttl:      ttl,
		now:      time.Now,
		subs:     make(map[int]func(SessionChange)),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	errs := validation.Errors{}
	if err := validation.Validate(email, validation.Required, validation.Match(emailPattern).Error("must be a valid email address")); err != nil {
		errs["email"] = err
	}
	// bcrypt ignores input past 72 bytes.
	if err := validation.Validate(password, validation.Required, validation.Length(6, 72)); err != nil {
		errs["password"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SignUp registers a new account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) (*domain.Session, *domain.User, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("sign up: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Settings:     domain.DefaultUserSettings(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Str("user_id", u.ID).Msg("account created")

	sess, err := s.startSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// SignIn checks the password and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Debug().Str("user_id", u.ID).Msg("password mismatch")
		return nil, nil, ErrInvalidCredentials
	}
	sess, err := s.startSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

func (s *AuthService) startSession(ctx context.Context, userID string) (*domain.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.notify(ctx, SessionChange{Kind: SessionSignedIn, UserID: userID, Token: token})
	return sess, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SignOut ends the session. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	sess, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("sign out: %w", err)
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.notify(ctx, SessionChange{Kind: SessionSignedOut, UserID: sess.UserID, Token: token})
	return nil
}

// GetSession resolves a bearer token to its session and user. Expired
// sessions are removed and reported as ErrUnauthorized.
func (s *AuthService) GetSession(ctx context.Context, token string) (*domain.Session, *domain.User, error) {
	if token == "" {
		return nil, nil, ErrUnauthorized
	}
	sess, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("delete expired session")
		}
		s.notify(ctx, SessionChange{Kind: SessionSignedOut, UserID: sess.UserID, Token: token})
		return nil, nil, ErrUnauthorized
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("get session user: %w", err)
	}
	return sess, u, nil
}

// OnSessionChange registers fn for sign-in and sign-out notifications and
// returns a function that removes it.
func (s *AuthService) OnSessionChange(fn func(SessionChange)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) notify(ctx context.Context, change SessionChange) {
	s.mu.Lock()
	subs := make([]func(SessionChange), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
	s.emitter.Emit(ctx, EventSessionChanged, change)
}

// ProfileInput carries the profile fields to change; nil fields are kept.
type ProfileInput struct {
	DisplayName *string              `json:"display_name,omitempty"`
	AvatarURL   *string              `json:"avatar_url,omitempty"`
	Settings    *domain.UserSettings `json:"settings,omitempty"`
}

func (in ProfileInput) Validate() error {
	errs := validation.Errors{}
	if in.DisplayName != nil {
		if err := validation.Validate(strings.TrimSpace(*in.DisplayName), validation.Required, validation.Length(1, 100)); err != nil {
			errs["display_name"] = err
		}
	}
	if in.Settings != nil {
		if err := validation.Validate(in.Settings.Theme, validation.In("light", "dark", "system")); err != nil {
			errs["settings.theme"] = err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateProfile applies in to the user's profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if in.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if in.Settings != nil {
		u.Settings = *in.Settings
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
