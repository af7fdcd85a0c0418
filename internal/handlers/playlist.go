package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaylistHandler handles playlist HTTP requests
type PlaylistHandler struct {
	playlists   repositories.PlaylistRepository
	videos      repositories.VideoRepository
	viewService *services.ViewService
}

// NewPlaylistHandler creates a new PlaylistHandler
func NewPlaylistHandler(playlists repositories.PlaylistRepository, videos repositories.VideoRepository, viewService *services.ViewService) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, videos: videos, viewService: viewService}
}

// RegisterPlaylistRoutes registers playlist routes
func (h *PlaylistHandler) RegisterPlaylistRoutes(optional, protected *echo.Group) {
	optional.GET("/playlists/:id", h.GetPlaylist)
	optional.GET("/users/:id/playlists", h.ListUserPlaylists)
	protected.POST("/playlists", h.CreatePlaylist)
	protected.PATCH("/playlists/:id", h.UpdatePlaylist)
	protected.DELETE("/playlists/:id", h.DeletePlaylist)
	protected.POST("/playlists/:id/videos/:videoId", h.AddVideo)
	protected.DELETE("/playlists/:id/videos/:videoId", h.RemoveVideo)
}

// GetPlaylist returns a playlist with its published videos embedded.
func (h *PlaylistHandler) GetPlaylist(c echo.Context) error {
	view, err := h.viewService.GetPlaylist(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// ListUserPlaylists returns every playlist of a user.
func (h *PlaylistHandler) ListUserPlaylists(c echo.Context) error {
	views, err := h.viewService.ListUserPlaylists(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// CreatePlaylist creates an empty playlist owned by the caller.
func (h *PlaylistHandler) CreatePlaylist(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.PlaylistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	playlist := &models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		Owner:       user.ID,
		Videos:      []primitive.ObjectID{},
	}
	if err := h.playlists.CreatePlaylist(c.Request().Context(), playlist); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, playlist)
}

// UpdatePlaylist renames a playlist. Only the owner may update.
func (h *PlaylistHandler) UpdatePlaylist(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	playlist, err := h.ownedPlaylist(c, user.ID)
	if err != nil {
		return err
	}

	var req models.PlaylistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.playlists.UpdatePlaylist(c.Request().Context(), playlist.ID, req.Name, req.Description); err != nil {
		return httpError(err)
	}

	updated, err := h.playlists.GetPlaylistByID(c.Request().Context(), playlist.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePlaylist deletes a playlist. Only the owner may delete. Videos are
// untouched.
func (h *PlaylistHandler) DeletePlaylist(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	playlist, err := h.ownedPlaylist(c, user.ID)
	if err != nil {
		return err
	}

	if err := h.playlists.DeletePlaylist(c.Request().Context(), playlist.ID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddVideo adds a video reference to a playlist. Adding a video that is
// already present is a no-op.
func (h *PlaylistHandler) AddVideo(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	playlist, err := h.ownedPlaylist(c, user.ID)
	if err != nil {
		return err
	}

	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid video ID")
	}
	if _, err := h.videos.GetVideoByID(c.Request().Context(), videoID); err != nil {
		return httpError(err)
	}

	if err := h.playlists.AddVideo(c.Request().Context(), playlist.ID, videoID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Video added to playlist"})
}

// RemoveVideo removes a video reference from a playlist. Removing an absent
// video is a no-op.
func (h *PlaylistHandler) RemoveVideo(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	playlist, err := h.ownedPlaylist(c, user.ID)
	if err != nil {
		return err
	}

	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid video ID")
	}

	if err := h.playlists.RemoveVideo(c.Request().Context(), playlist.ID, videoID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Video removed from playlist"})
}

func (h *PlaylistHandler) ownedPlaylist(c echo.Context, ownerID primitive.ObjectID) (*models.Playlist, error) {
	playlistID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid playlist ID")
	}

	playlist, err := h.playlists.GetPlaylistByID(c.Request().Context(), playlistID)
	if err != nil {
		return nil, httpError(err)
	}
	if playlist.Owner != ownerID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this playlist")
	}
	return playlist, nil
}
