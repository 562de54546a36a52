package service_test

import (
	"context"
	"testing"
	"time"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_SignUpDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, u, err := env.auth.SignUp(ctx, "  Ada@Example.com ", "secret-password", "")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "ada", u.DisplayName)
	assert.Equal(t, "light", u.Settings.Theme)
	assert.True(t, u.Settings.AutoSave)
	assert.NotEqual(t, "secret-password", u.PasswordHash)
	assert.Len(t, sess.Token, 64)
	assert.Equal(t, []string{service.EventSessionChanged}, env.emitter.Names())
}

func TestAuth_SignUpValidation(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.SignUp(context.Background(), "not-an-email", "123", "")
	require.Error(t, err)
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestAuth_SignUpDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "ada@example.com")

	_, _, err := env.auth.SignUp(context.Background(), "ADA@example.com", "another-password", "Ada")
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestAuth_SignInAndSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	_, _, err := env.auth.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = env.auth.SignIn(ctx, "nobody@example.com", "secret-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	sess, _, err := env.auth.SignIn(ctx, "ada@example.com", "secret-password")
	require.NoError(t, err)

	got, u, err := env.auth.GetSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, userID, u.ID)

	_, _, err = env.auth.GetSession(ctx, "bogus")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, _, err = env.auth.GetSession(ctx, "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuth_SignOutNotifiesSubscribers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "ada@example.com")

	var changes []service.SessionChange
	unsubscribe := env.auth.OnSessionChange(func(c service.SessionChange) {
		changes = append(changes, c)
	})

	sess, u, err := env.auth.SignIn(ctx, "ada@example.com", "secret-password")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx, sess.Token))

	require.Len(t, changes, 2)
	assert.Equal(t, service.SessionSignedIn, changes[0].Kind)
	assert.Equal(t, service.SessionSignedOut, changes[1].Kind)
	assert.Equal(t, u.ID, changes[1].UserID)

	_, _, err = env.auth.GetSession(ctx, sess.Token)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	// Signing out twice is harmless and unsubscribed callbacks stay quiet.
	unsubscribe()
	require.NoError(t, env.auth.SignOut(ctx, sess.Token))
	_, _, err = env.auth.SignIn(ctx, "ada@example.com", "secret-password")
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestAuth_ExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	expired := &domain.Session{
		Token:     "expired-token",
		UserID:    userID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.stores.Sessions.CreateSession(ctx, expired))

	_, _, err := env.auth.GetSession(ctx, "expired-token")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = env.stores.Sessions.GetSession(ctx, "expired-token")
	assert.ErrorIs(t, err, domain.ErrNotFound, "expired session is deleted")
}

func TestAuth_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	name := "Ada Lovelace"
	settings := domain.UserSettings{Theme: "dark", ShowLineNumbers: true, DefaultSEODescription: "Notes"}
	u, err := env.auth.UpdateProfile(ctx, userID, service.ProfileInput{DisplayName: &name, Settings: &settings})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.DisplayName)

	stored, err := env.stores.Users.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, settings, stored.Settings)

	bad := domain.UserSettings{Theme: "neon"}
	_, err = env.auth.UpdateProfile(ctx, userID, service.ProfileInput{Settings: &bad})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "settings.theme")
}
