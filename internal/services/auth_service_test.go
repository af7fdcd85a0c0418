package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/repositories"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := auth.NewTokenService("test-access", "test-refresh", time.Hour, 24*time.Hour)
	return NewAuthService(users, tokens), users
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username:  "Chai",
		FullName:  "Chai Aur Code",
		Email:     "Chai@Example.com",
		Password:  "correct-horse",
		AvatarURL: "https://assets.example.com/avatars/a.png",
	}
}

func TestRegisterSanitizesAndNormalizes(t *testing.T) {
	svc, users := newAuthFixture()

	profile, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.Equal(t, "chai", profile.Username)
	assert.Equal(t, "chai@example.com", profile.Email)
	assert.False(t, profile.ID.IsZero())

	// Stored password must be a bcrypt hash, never the plaintext.
	stored, err := users.GetUserByID(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _ := newAuthFixture()

	input := registerInput()
	input.Email = "   "
	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterRejectsMissingAvatar(t *testing.T) {
	svc, _ := newAuthFixture()

	input := registerInput()
	input.AvatarURL = ""
	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrDependency)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	input := registerInput()
	input.Email = "other@example.com"
	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, repositories.ErrConflict)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	for _, identifier := range []string{"chai", "CHAI", "chai@example.com"} {
		profile, pair, err := svc.Login(context.Background(), identifier, "correct-horse")
		require.NoError(t, err, "identifier %q", identifier)
		assert.Equal(t, "chai", profile.Username)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "chai", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLoginInvalidatesPreviousSession(t *testing.T) {
	svc, users := newAuthFixture()
	profile, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, first, err := svc.Login(context.Background(), "chai", "correct-horse")
	require.NoError(t, err)
	_, second, err := svc.Login(context.Background(), "chai", "correct-horse")
	require.NoError(t, err)

	stored, err := users.GetUserByID(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, second.RefreshToken, stored.RefreshToken)

	// The first session's refresh token was rotated out by the second login.
	_, _, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "chai", "correct-horse")
	require.NoError(t, err)

	_, rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Reusing the rotated-out token must fail; the fresh one must work.
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Refresh(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	svc, _ := newAuthFixture()
	profile, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "chai", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), profile.ID))
	require.NoError(t, svc.Logout(context.Background(), profile.ID))

	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture()
	profile, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), profile.ID, "wrong", "new-password-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = svc.ChangePassword(context.Background(), profile.ID, "correct-horse", "  ")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ChangePassword(context.Background(), profile.ID, "correct-horse", "new-password-1")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "chai", "correct-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = svc.Login(context.Background(), "chai", "new-password-1")
	assert.NoError(t, err)
}

func TestVerifyAccessToken(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "chai", "correct-horse")
	require.NoError(t, err)

	profile, err := svc.Verify(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "chai", profile.Username)

	_, err = svc.Verify(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateAccountDetails(t *testing.T) {
	svc, _ := newAuthFixture()
	profile, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = svc.UpdateAccountDetails(context.Background(), profile.ID, " ", " ")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateAccountDetails(context.Background(), profile.ID, "New Name", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "new@example.com", updated.Email)
}
