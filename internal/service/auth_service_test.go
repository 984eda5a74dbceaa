package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
)

func newAuthService(t *testing.T) (*AuthService, *fixture) {
	f := newFixture(t)
	return &AuthService{Users: f.repos.Users, Tokens: NewJWTService("test-secret", time.Hour), Logger: discardLogger()}, f
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)

	res, err := auth.Register(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", res.Message)
	assert.NotEmpty(t, res.Token)

	id, email, err := auth.Tokens.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.Equal(t, "alice@example.com", email)

	_, err = auth.Register(ctx, "ALICE@example.com", "secret1", "")
	assert.Equal(t, "User already exists with this email", appErrors.Message(err))

	login, err := auth.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, "user", login.User.Role)

	_, err = auth.Login(ctx, "alice@example.com", "wrong-password")
	assert.True(t, appErrors.IsUnauthorized(err))
	assert.Equal(t, "Invalid email or password", appErrors.Message(err))

	_, err = auth.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, "Invalid email or password", appErrors.Message(err))

	me, err := auth.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Name)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)

	_, err := auth.Register(ctx, "", "secret1", "")
	assert.Equal(t, "Email and password are required", appErrors.Message(err))

	_, err = auth.Register(ctx, "a@example.com", "12345", "")
	assert.Equal(t, "Password must be at least 6 characters", appErrors.Message(err))
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)

	_, err := auth.Register(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)
	require.NoError(t, auth.SetActive(ctx, "bob@example.com", false))

	_, err = auth.Login(ctx, "bob@example.com", "secret1")
	assert.Equal(t, "Account is deactivated", appErrors.Message(err))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	auth, f := newAuthService(t)
	u := f.user(t, "c@example.com")

	token, err := NewJWTService("other-secret", time.Hour).GenerateToken(u)
	require.NoError(t, err)
	_, _, err = auth.Tokens.ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewJWTService("test-secret", -time.Minute).GenerateToken(u)
	require.NoError(t, err)
	_, _, err = auth.Tokens.ValidateToken(expired)
	assert.Error(t, err)
}
