package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/services"
	"github.com/videotube/backend/internal/storage"
)

// UserHandler handles account and channel HTTP requests
type UserHandler struct {
	authService *services.AuthService
	viewService *services.ViewService
	assets      storage.AssetStorage
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *services.AuthService, viewService *services.ViewService, assets storage.AssetStorage) *UserHandler {
	return &UserHandler{authService: authService, viewService: viewService, assets: assets}
}

// RegisterUserRoutes registers account and channel routes. The channel
// profile route sits on the optionally-authenticated group so the
// is_subscribed flag resolves when credentials are present.
func (h *UserHandler) RegisterUserRoutes(optional, protected *echo.Group) {
	optional.GET("/channels/:username", h.GetChannelProfile)
	protected.GET("/users/me", h.GetCurrentUser)
	protected.PATCH("/users/me", h.UpdateAccount)
	protected.PATCH("/users/me/avatar", h.UpdateAvatar)
	protected.PATCH("/users/me/cover-image", h.UpdateCoverImage)
	protected.GET("/users/me/history", h.GetWatchHistory)
}

// GetChannelProfile returns the public channel view for a username with
// subscription counts and the viewer-scoped is_subscribed flag.
func (h *UserHandler) GetChannelProfile(c echo.Context) error {
	profile, err := h.viewService.GetChannelProfile(c.Request().Context(), c.Param("username"), optionalViewer(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetCurrentUser returns the caller's sanitized profile.
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAccount updates the caller's full name and/or email.
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.authService.UpdateAccountDetails(c.Request().Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateAvatar ingests a new avatar file and stores its reference.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	avatarURL, err := ingestFormFile(c, h.assets, "avatar", "avatars")
	if err != nil {
		return err
	}
	if avatarURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar file is required")
	}

	if err := h.authService.UpdateAvatar(c.Request().Context(), user.ID, avatarURL); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar": avatarURL})
}

// UpdateCoverImage ingests a new cover image file and stores its reference.
func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	coverURL, err := ingestFormFile(c, h.assets, "cover_image", "covers")
	if err != nil {
		return err
	}
	if coverURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Cover image file is required")
	}

	if err := h.authService.UpdateCoverImage(c.Request().Context(), user.ID, coverURL); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cover_image": coverURL})
}

// GetWatchHistory returns the caller's watch history as full video views in
// first-watched order.
func (h *UserHandler) GetWatchHistory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	videos, err := h.viewService.GetWatchHistory(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, videos)
}
