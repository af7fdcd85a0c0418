package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/services"
)

// DashboardHandler handles the channel owner's dashboard requests
type DashboardHandler struct {
	viewService *services.ViewService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(viewService *services.ViewService) *DashboardHandler {
	return &DashboardHandler{viewService: viewService}
}

// RegisterDashboardRoutes registers dashboard routes, all authenticated
func (h *DashboardHandler) RegisterDashboardRoutes(protected *echo.Group) {
	protected.GET("/dashboard/stats", h.GetStats)
	protected.GET("/dashboard/videos", h.GetVideos)
}

// GetStats returns the caller's channel aggregates.
func (h *DashboardHandler) GetStats(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.viewService.GetChannelStats(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetVideos returns every video of the caller's channel, published or not.
func (h *DashboardHandler) GetVideos(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	videos, err := h.viewService.GetChannelVideos(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, videos)
}
