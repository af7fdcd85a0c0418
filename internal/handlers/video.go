package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/services"
	"github.com/videotube/backend/internal/storage"
)

// VideoHandler handles video HTTP requests
type VideoHandler struct {
	videoService *services.VideoService
	viewService  *services.ViewService
	assets       storage.AssetStorage
}

// NewVideoHandler creates a new VideoHandler
func NewVideoHandler(videoService *services.VideoService, viewService *services.ViewService, assets storage.AssetStorage) *VideoHandler {
	return &VideoHandler{videoService: videoService, viewService: viewService, assets: assets}
}

// RegisterVideoRoutes registers video routes. Reads sit on the
// optionally-authenticated group so viewer flags resolve when credentials are
// present; writes require authentication.
func (h *VideoHandler) RegisterVideoRoutes(optional, protected *echo.Group) {
	optional.GET("/videos", h.ListVideos)
	optional.GET("/videos/:id", h.GetVideo)
	protected.POST("/videos", h.PublishVideo)
	protected.PATCH("/videos/:id", h.UpdateVideo)
	protected.DELETE("/videos/:id", h.DeleteVideo)
	protected.PATCH("/videos/:id/toggle-publish", h.TogglePublish)
}

// ListVideos returns a sorted, paginated page of videos. Supported query
// params: query, page, limit, sort_by, sort_dir (asc|desc), owner_id.
func (h *VideoHandler) ListVideos(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	sortDir := -1
	if c.QueryParam("sort_dir") == "asc" {
		sortDir = 1
	}

	input := services.ListVideosInput{
		Query:   c.QueryParam("query"),
		Page:    page,
		Limit:   limit,
		SortBy:  c.QueryParam("sort_by"),
		SortDir: sortDir,
		OwnerID: c.QueryParam("owner_id"),
	}

	result, err := h.viewService.ListVideos(c.Request().Context(), input, optionalViewer(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetVideo returns the full video view and records the watch as a side
// effect: the view counter is incremented and, for signed-in viewers, the
// video joins their watch history.
func (h *VideoHandler) GetVideo(c echo.Context) error {
	view, err := h.viewService.GetVideoDetail(c.Request().Context(), c.Param("id"), optionalViewer(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// PublishVideo creates a video from a multipart form carrying title and
// description plus the video file and thumbnail. Both files are required.
func (h *VideoHandler) PublishVideo(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.PublishVideoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	videoURL, err := ingestFormFile(c, h.assets, "video_file", "videos")
	if err != nil {
		return err
	}
	if videoURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}

	thumbnailURL, err := ingestFormFile(c, h.assets, "thumbnail", "thumbnails")
	if err != nil {
		return err
	}
	if thumbnailURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Thumbnail file is required")
	}

	duration, _ := strconv.ParseFloat(c.FormValue("duration"), 64)

	video, err := h.videoService.Publish(c.Request().Context(), services.PublishInput{
		Title:        req.Title,
		Description:  req.Description,
		VideoFileURL: videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
		Owner:        user.ID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, video)
}

// UpdateVideo edits title, description and optionally the thumbnail. Only the
// owner may update.
func (h *VideoHandler) UpdateVideo(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateVideoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A replacement thumbnail is optional on update.
	thumbnailURL, err := ingestFormFile(c, h.assets, "thumbnail", "thumbnails")
	if err != nil {
		return err
	}

	video, err := h.videoService.Update(c.Request().Context(), c.Param("id"), user.ID, req.Title, req.Description, thumbnailURL)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, video)
}

// DeleteVideo deletes a video and cascades to its likes, comments, comment
// likes and playlist entries. Only the owner may delete.
func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.videoService.Delete(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TogglePublish flips the video's visibility flag.
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	published, err := h.videoService.TogglePublish(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"is_published": published})
}
