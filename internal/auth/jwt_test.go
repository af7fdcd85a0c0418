package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestService() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: "chai",
		Email:    "chai@example.com",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	user := testUser()

	signed, err := svc.SignAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "chai", claims.Username)
	assert.Equal(t, "chai@example.com", claims.Email)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := primitive.NewObjectID().Hex()

	signed, err := svc.SignRefreshToken(userID)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	signed, err := svc.SignAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	svc := newTestService()
	other := NewTokenService("other-access", "other-refresh", time.Hour, 24*time.Hour)

	signed, err := svc.SignAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestService()

	// A refresh token must not verify as an access token.
	refresh, err := svc.SignRefreshToken(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
