package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair is an issued access/refresh credential pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields required to create an account. AvatarURL
// must be a durable reference produced by asset ingestion; CoverImageURL is
// optional and may be empty when ingestion failed or nothing was uploaded.
type RegisterInput struct {
	Username      string
	FullName      string
	Email         string
	Password      string
	AvatarURL     string
	CoverImageURL string
}

// AuthService implements the identity and credential engine: registration,
// password verification, and the issue/verify/rotate/revoke lifecycle of the
// access/refresh token pair. The User document's single refresh-token slot
// enforces one active session per user.
type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.TokenService
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new account and returns the sanitized profile.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.UserProfile, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" || input.FullName == "" || input.Email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("all fields are required: %w", ErrValidation)
	}
	if input.AvatarURL == "" {
		return nil, fmt.Errorf("avatar ingestion did not yield a usable reference: %w", ErrDependency)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:   input.Username,
		FullName:   input.FullName,
		Email:      input.Email,
		Avatar:     input.AvatarURL,
		CoverImage: input.CoverImageURL,
		Password:   string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user.ToProfile(), nil
}

// Login verifies the password for a username-or-email identifier and issues a
// fresh token pair. The stored refresh token is overwritten, which invalidates
// every other outstanding session for this user.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.UserProfile, *TokenPair, error) {
	user, err := s.users.GetUserByUsernameOrEmail(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("incorrect password: %w", ErrUnauthorized)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, err
	}
	return user.ToProfile(), pair, nil
}

// Refresh rotates a refresh token: exactly one concurrent caller presenting
// the currently stored value wins; everyone else, including a caller reusing
// a rotated-out token, gets ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*models.UserProfile, *TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh token rejected: %w", ErrUnauthorized)
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh token rejected: %w", ErrUnauthorized)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh token rejected: %w", ErrUnauthorized)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	// Single conditional update: the swap only happens if the presented value
	// still equals the stored one.
	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		return nil, nil, fmt.Errorf("refresh token reuse or rotation race: %w", ErrUnauthorized)
	}
	return user.ToProfile(), pair, nil
}

// Logout clears the stored refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// ChangePassword re-hashes and stores a new password after verifying the old
// one. Existing sessions are not revoked.
func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required: %w", ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return fmt.Errorf("incorrect old password: %w", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// Verify checks an access token and resolves it to the sanitized user record.
func (s *AuthService) Verify(ctx context.Context, accessToken string) (*models.UserProfile, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("access token rejected: %w", ErrUnauthorized)
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("access token rejected: %w", ErrUnauthorized)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access token user no longer exists: %w", ErrUnauthorized)
	}
	return user.ToProfile(), nil
}

// UpdateAccountDetails updates full name and/or email of the account.
func (s *AuthService) UpdateAccountDetails(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*models.UserProfile, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" && email == "" {
		return nil, fmt.Errorf("nothing to update: %w", ErrValidation)
	}
	if err := s.users.UpdateAccountDetails(ctx, userID, fullName, email); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToProfile(), nil
}

// UpdateAvatar replaces the account's avatar reference. A missing reference
// means ingestion failed, which is fatal for this operation.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, avatarURL string) error {
	if avatarURL == "" {
		return fmt.Errorf("avatar ingestion did not yield a usable reference: %w", ErrDependency)
	}
	return s.users.UpdateAvatar(ctx, userID, avatarURL)
}

// UpdateCoverImage replaces the account's cover image reference.
func (s *AuthService) UpdateCoverImage(ctx context.Context, userID primitive.ObjectID, coverURL string) error {
	if coverURL == "" {
		return fmt.Errorf("cover image ingestion did not yield a usable reference: %w", ErrDependency)
	}
	return s.users.UpdateCoverImage(ctx, userID, coverURL)
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.tokens.SignAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefreshToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
