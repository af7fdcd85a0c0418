package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TweetHandler handles tweet HTTP requests
type TweetHandler struct {
	tweets      repositories.TweetRepository
	likes       repositories.LikeRepository
	viewService *services.ViewService
}

// NewTweetHandler creates a new TweetHandler
func NewTweetHandler(tweets repositories.TweetRepository, likes repositories.LikeRepository, viewService *services.ViewService) *TweetHandler {
	return &TweetHandler{tweets: tweets, likes: likes, viewService: viewService}
}

// RegisterTweetRoutes registers tweet routes
func (h *TweetHandler) RegisterTweetRoutes(optional, protected *echo.Group) {
	optional.GET("/users/:id/tweets", h.ListUserTweets)
	protected.POST("/tweets", h.CreateTweet)
	protected.PATCH("/tweets/:id", h.UpdateTweet)
	protected.DELETE("/tweets/:id", h.DeleteTweet)
}

// ListUserTweets returns a user's tweets as views, newest first.
func (h *TweetHandler) ListUserTweets(c echo.Context) error {
	tweets, err := h.viewService.ListUserTweets(c.Request().Context(), c.Param("id"), optionalViewer(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tweets)
}

// CreateTweet posts a new tweet on the caller's channel.
func (h *TweetHandler) CreateTweet(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.TweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tweet := &models.Tweet{Content: req.Content, Owner: user.ID}
	if err := h.tweets.CreateTweet(c.Request().Context(), tweet); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, tweet)
}

// UpdateTweet edits a tweet's content. Only the owner may edit.
func (h *TweetHandler) UpdateTweet(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tweetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tweet ID")
	}

	var req models.TweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.tweets.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		return httpError(err)
	}
	if existing.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to edit this tweet")
	}

	if err := h.tweets.UpdateTweet(c.Request().Context(), tweetID, req.Content); err != nil {
		return httpError(err)
	}

	updated, err := h.tweets.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTweet deletes a tweet and its likes. Only the owner may delete.
func (h *TweetHandler) DeleteTweet(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tweetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tweet ID")
	}

	existing, err := h.tweets.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		return httpError(err)
	}
	if existing.Owner != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this tweet")
	}

	if err := h.tweets.DeleteTweet(c.Request().Context(), tweetID); err != nil {
		return httpError(err)
	}
	if err := h.likes.DeleteByTarget(c.Request().Context(), models.LikeTargetTweet, tweetID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
