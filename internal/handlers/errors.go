package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/services"
	"github.com/videotube/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// httpError maps service and repository sentinels onto HTTP status codes.
// Internal wrap details stay out of responses for 500s.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrDependency):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// currentUser returns the authenticated profile set by the auth middleware.
func currentUser(c echo.Context) (*models.UserProfile, error) {
	user, ok := c.Get("user").(*models.UserProfile)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return user, nil
}

// optionalViewer returns the viewer's ID when the request carried valid
// credentials, nil otherwise.
func optionalViewer(c echo.Context) *primitive.ObjectID {
	user, ok := c.Get("user").(*models.UserProfile)
	if !ok || user == nil {
		return nil
	}
	id := user.ID
	return &id
}

// ingestFormFile uploads the named multipart file through asset storage and
// returns its durable URL. Missing file yields ("", nil) so callers can decide
// whether the asset is required.
func ingestFormFile(c echo.Context, assets storage.AssetStorage, field, prefix string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart payload")
	}
	return ingestHeader(c, assets, header, prefix)
}

func ingestHeader(c echo.Context, assets storage.AssetStorage, header *multipart.FileHeader, prefix string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Failed to open uploaded file")
	}
	defer src.Close()

	url, err := assets.Upload(c.Request().Context(), prefix, src, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadGateway, "Asset upload failed")
	}
	return url, nil
}
