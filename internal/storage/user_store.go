package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blocknotes/internal/domain"
)

// UserStore implements domain.UserStore.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, display_name, avatar_url, settings_json, created_at, updated_at`

func (s *UserStore) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.AvatarURL, string(settings), u.CreatedAt, u.UpdatedAt,
	)
	return mapError(err)
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	u := &domain.User{}
	var settings string
	err := s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`), value,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.AvatarURL, &settings, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", mapError(err))
	}
	if err := json.Unmarshal([]byte(settings), &u.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.conn.ExecContext(ctx, s.db.rebind(
		`UPDATE users SET email = ?, password_hash = ?, display_name = ?, avatar_url = ?, settings_json = ?, updated_at = ? WHERE id = ?`),
		u.Email, u.PasswordHash, u.DisplayName, u.AvatarURL, string(settings), u.UpdatedAt, u.ID,
	)
	return mapError(err)
}

// SessionStore implements domain.SessionStore.
type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`),
		sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	)
	return mapError(err)
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`), token,
	).Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", mapError(err))
	}
	return sess, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM sessions WHERE token = ?`), token)
	return err
}

func (s *SessionStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM sessions WHERE user_id = ?`), userID)
	return err
}
