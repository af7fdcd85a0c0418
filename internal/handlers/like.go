package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/services"
)

// LikeHandler handles like-toggle HTTP requests
type LikeHandler struct {
	likeService *services.LikeService
	viewService *services.ViewService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeService *services.LikeService, viewService *services.ViewService) *LikeHandler {
	return &LikeHandler{likeService: likeService, viewService: viewService}
}

// RegisterLikeRoutes registers like routes, all authenticated
func (h *LikeHandler) RegisterLikeRoutes(protected *echo.Group) {
	protected.POST("/likes/videos/:id/toggle", h.ToggleVideoLike)
	protected.POST("/likes/comments/:id/toggle", h.ToggleCommentLike)
	protected.POST("/likes/tweets/:id/toggle", h.ToggleTweetLike)
	protected.GET("/likes/videos", h.GetLikedVideos)
}

// ToggleVideoLike flips the caller's like on a video.
func (h *LikeHandler) ToggleVideoLike(c echo.Context) error {
	return h.toggle(c, models.LikeTargetVideo)
}

// ToggleCommentLike flips the caller's like on a comment.
func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	return h.toggle(c, models.LikeTargetComment)
}

// ToggleTweetLike flips the caller's like on a tweet.
func (h *LikeHandler) ToggleTweetLike(c echo.Context) error {
	return h.toggle(c, models.LikeTargetTweet)
}

func (h *LikeHandler) toggle(c echo.Context, kind models.LikeTarget) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	liked, err := h.likeService.ToggleLike(c.Request().Context(), kind, c.Param("id"), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}

// GetLikedVideos returns the videos the caller has liked, as full views.
func (h *LikeHandler) GetLikedVideos(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	videos, err := h.viewService.GetLikedVideos(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, videos)
}
