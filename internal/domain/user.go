package domain

import (
	"context"
	"time"
)

// UserSettings are per-user editor and publishing preferences.
type UserSettings struct {
	Theme                 string `json:"theme"`
	AutoSave              bool   `json:"auto_save"`
	ShowLineNumbers       bool   `json:"show_line_numbers"`
	DefaultSEODescription string `json:"default_seo_description"`
	AnalyticsEnabled      bool   `json:"analytics_enabled"`
}

// DefaultUserSettings is applied to new accounts.
func DefaultUserSettings() UserSettings {
	return UserSettings{Theme: "light", AutoSave: true}
}

type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	DisplayName  string       `json:"display_name"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Settings     UserSettings `json:"settings"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session is an authenticated login identified by an opaque bearer token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error
}
