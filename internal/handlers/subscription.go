package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	likeService *services.LikeService
	subs        repositories.SubscriptionRepository
	users       repositories.UserRepository
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(likeService *services.LikeService, subs repositories.SubscriptionRepository, users repositories.UserRepository) *SubscriptionHandler {
	return &SubscriptionHandler{likeService: likeService, subs: subs, users: users}
}

// RegisterSubscriptionRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterSubscriptionRoutes(optional, protected *echo.Group) {
	protected.POST("/subscriptions/channels/:id/toggle", h.ToggleSubscription)
	optional.GET("/subscriptions/channels/:id/subscribers", h.ListSubscribers)
	protected.GET("/subscriptions/me", h.ListSubscribedChannels)
}

// ToggleSubscription flips the caller's subscription to a channel.
func (h *SubscriptionHandler) ToggleSubscription(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	subscribed, err := h.likeService.ToggleSubscription(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subscribed": subscribed})
}

// ListSubscribers returns the subscribers of a channel as owner projections.
func (h *SubscriptionHandler) ListSubscribers(c echo.Context) error {
	channelID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid channel ID")
	}

	ids, err := h.subs.ListSubscriberIDs(c.Request().Context(), channelID)
	if err != nil {
		return httpError(err)
	}
	return h.respondUsers(c, ids)
}

// ListSubscribedChannels returns the channels the caller subscribes to.
func (h *SubscriptionHandler) ListSubscribedChannels(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	ids, err := h.subs.ListChannelIDs(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return h.respondUsers(c, ids)
}

func (h *SubscriptionHandler) respondUsers(c echo.Context, ids []primitive.ObjectID) error {
	users, err := h.users.GetUsersByIDs(c.Request().Context(), ids)
	if err != nil {
		return httpError(err)
	}

	infos := make([]models.OwnerInfo, len(users))
	for i := range users {
		infos[i] = users[i].ToOwnerInfo()
	}
	return c.JSON(http.StatusOK, infos)
}
