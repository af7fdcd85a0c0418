package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	comments    repositories.CommentRepository
	videos      repositories.VideoRepository
	likes       repositories.LikeRepository
	viewService *services.ViewService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	comments repositories.CommentRepository,
	videos repositories.VideoRepository,
	likes repositories.LikeRepository,
	viewService *services.ViewService,
) *CommentHandler {
	return &CommentHandler{comments: comments, videos: videos, likes: likes, viewService: viewService}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(optional, protected *echo.Group) {
	optional.GET("/videos/:id/comments", h.ListComments)
	protected.POST("/videos/:id/comments", h.AddComment)
	protected.PATCH("/comments/:id", h.UpdateComment)
	protected.DELETE("/comments/:id", h.DeleteComment)
}

// ListComments returns a paginated page of comment views for a video.
func (h *CommentHandler) ListComments(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.viewService.ListComments(c.Request().Context(), c.Param("id"), page, limit, optionalViewer(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// AddComment adds a comment to a video.
func (h *CommentHandler) AddComment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	videoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid video ID")
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.videos.GetVideoByID(c.Request().Context(), videoID); err != nil {
		return httpError(err)
	}

	comment := &models.Comment{
		Content: req.Content,
		Video:   videoID,
		Owner:   user.ID,
	}
	if err := h.comments.CreateComment(c.Request().Context(), comment); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment's content. Only the owner may edit.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.comments.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		return httpError(err)
	}
	if existing.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to edit this comment")
	}

	if err := h.comments.UpdateComment(c.Request().Context(), commentID, req.Content); err != nil {
		return httpError(err)
	}

	updated, err := h.comments.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteComment deletes a comment and its likes. Only the owner may delete.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	existing, err := h.comments.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		return httpError(err)
	}
	if existing.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.comments.DeleteComment(c.Request().Context(), commentID); err != nil {
		return httpError(err)
	}
	if err := h.likes.DeleteByTarget(c.Request().Context(), models.LikeTargetComment, commentID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
