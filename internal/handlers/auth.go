package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/services"
	"github.com/videotube/backend/internal/storage"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	assets      storage.AssetStorage
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, assets storage.AssetStorage) *AuthHandler {
	return &AuthHandler{authService: authService, assets: assets}
}

// RegisterAuthRoutes registers authentication routes. Protected routes go on
// the authenticated group.
func (h *AuthHandler) RegisterAuthRoutes(public, protected *echo.Group) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)
	protected.POST("/auth/logout", h.Logout)
	protected.POST("/auth/change-password", h.ChangePassword)
}

// RegisterRequest defines the multipart form fields for creating an account
type RegisterRequest struct {
	Username string `form:"username" validate:"required,min=3,max=30,alphanum"`
	FullName string `form:"full_name" validate:"required,min=2,max=80"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

// Register creates a new account from a multipart form carrying the profile
// fields plus a required avatar file and optional cover image file.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	avatarURL, err := ingestFormFile(c, h.assets, "avatar", "avatars")
	if err != nil {
		return err
	}
	if avatarURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar file is required")
	}

	// Cover image is optional; a failed upload degrades to no cover image.
	coverURL, err := ingestFormFile(c, h.assets, "cover_image", "covers")
	if err != nil {
		coverURL = ""
	}

	profile, err := h.authService.Register(c.Request().Context(), services.RegisterInput{
		Username:      req.Username,
		FullName:      req.FullName,
		Email:         req.Email,
		Password:      req.Password,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, profile)
}

// Login verifies credentials against a username or email identifier and
// returns the sanitized profile together with a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, pair, err := h.authService.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":          profile,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh rotates the refresh token and returns a fresh pair. Presenting a
// stale or already rotated token is rejected with 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":          profile,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout revokes the caller's session. Safe to repeat.
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), user.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// ChangePassword replaces the caller's password after verifying the old one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed"})
}
