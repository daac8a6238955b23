package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"goaltracker/database"
	"goaltracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuthService(db *database.Database, expiration time.Duration) *AuthService {
	return NewAuthService(testSecret, expiration, NewUserService(), NewDBSessionStore(db))
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	db, ctx := setupServiceDB(t)
	auth := newTestAuthService(db, time.Hour)

	identity, err := auth.Register(ctx, db, "  alice  ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	var user models.User
	require.NoError(t, db.DB.First(&user, identity.UserID).Error)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, auth.ComparePasswords(user.PasswordHash, "secret1"))

	session, err := auth.Login(ctx, db, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	resolved, err := auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, identity, resolved)
}

func TestRegister_Validation(t *testing.T) {
	db, ctx := setupServiceDB(t)
	auth := newTestAuthService(db, time.Hour)

	tests := []struct {
		name     string
		username string
		password string
		message  string
	}{
		{"empty username", "", "secret1", "Username and password required"},
		{"blank username", "   ", "secret1", "Username and password required"},
		{"empty password", "alice", "", "Username and password required"},
		{"short username", "al", "secret1", "Username must be at least 3 characters"},
		{"short password", "alice", "12345", "Password must be at least 6 characters"},
		{"long username", strings.Repeat("a", 81), "secret1", "Username must be at most 80 characters"},
		{"long password", "alice", strings.Repeat("p", 73), "Password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, db, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.message, ValidationMessage(err))
		})
	}

	var count int64
	db.DB.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db, ctx := setupServiceDB(t)
	auth := newTestAuthService(db, time.Hour)

	_, err := auth.Register(ctx, db, "alice", "secret1")
	require.NoError(t, err)

	_, err = auth.Register(ctx, db, "alice", "another1")
	assert.Equal(t, "Username already exists", ValidationMessage(err))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db, ctx := setupServiceDB(t)
	auth := newTestAuthService(db, time.Hour)
	_, err := auth.Register(ctx, db, "alice", "secret1")
	require.NoError(t, err)

	_, err = auth.Login(ctx, db, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, db, "mallory", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, db, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogout_RevokesSession(t *testing.T) {
	db, ctx := setupServiceDB(t)
	auth := newTestAuthService(db, time.Hour)
	_, err := auth.Register(ctx, db, "alice", "secret1")
	require.NoError(t, err)

	first, err := auth.Login(ctx, db, "alice", "secret1")
	require.NoError(t, err)
	second, err := auth.Login(ctx, db, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, first.Token))

	_, err = auth.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Other sessions of the same user stay valid.
	_, err = auth.Authenticate(ctx, second.Token)
	assert.NoError(t, err)

	// Logging out twice or with garbage is harmless.
	assert.NoError(t, auth.Logout(ctx, first.Token))
	assert.NoError(t, auth.Logout(ctx, "garbage"))
}

func TestAuthenticate_Rejects(t *testing.T) {
	db, ctx := setupServiceDB(t)
	expired := newTestAuthService(db, -time.Minute)
	_, err := expired.Register(ctx, db, "alice", "secret1")
	require.NoError(t, err)

	session, err := expired.Login(ctx, db, "alice", "secret1")
	require.NoError(t, err)

	_, err = expired.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = expired.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other := NewAuthService("another-secret", time.Hour, NewUserService(), NewDBSessionStore(db))
	valid := newTestAuthService(db, time.Hour)
	session, err = valid.Login(ctx, db, "alice", "secret1")
	require.NoError(t, err)
	_, err = other.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
