package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes     repositories.LikeRepository
	service   *feed.Service
	publisher events.Publisher
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes repositories.LikeRepository, service *feed.Service, publisher events.Publisher) *LikeHandler {
	return &LikeHandler{likes: likes, service: service, publisher: publisher}
}

// RegisterLikeRoutes registers like-related routes. All of them need an identity.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	auth := middleware.RequireIdentity()
	g.POST("/activities/:id/like", h.LikeActivity, auth)
	g.DELETE("/activities/:id/like", h.UnlikeActivity, auth)
	g.POST("/activities/:id/like/toggle", h.ToggleLike, auth)
}

type likeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

func (h *LikeHandler) state(c echo.Context, activityID string, liked bool) error {
	counts, err := h.likes.CountByActivityIDs(c.Request().Context(), []string{activityID})
	if err != nil {
		return toHTTPError(err, "Like")
	}
	return respond(c, http.StatusOK, likeState{Liked: liked, LikeCount: counts[activityID]})
}

// LikeActivity likes an activity the caller can read
func (h *LikeHandler) LikeActivity(c echo.Context) error {
	ctx := c.Request().Context()
	activity, err := h.service.VisibleActivity(ctx, c.Param("id"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Activity")
	}

	id := activity.ID.Hex()
	if err := h.likes.Like(ctx, id, callerID(c)); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Activity already liked")
		}
		return toHTTPError(err, "Like")
	}
	publish(c, h.publisher, events.New(events.LikeCreated, callerID(c), id, activity.UserID))
	return h.state(c, id, true)
}

// UnlikeActivity removes the caller's like
func (h *LikeHandler) UnlikeActivity(c echo.Context) error {
	ctx := c.Request().Context()
	activity, err := h.service.VisibleActivity(ctx, c.Param("id"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Activity")
	}

	id := activity.ID.Hex()
	if err := h.likes.Unlike(ctx, id, callerID(c)); err != nil {
		return toHTTPError(err, "Like")
	}
	publish(c, h.publisher, events.New(events.LikeRemoved, callerID(c), id, activity.UserID))
	return h.state(c, id, false)
}

// ToggleLike flips the caller's like atomically and returns the new state
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	ctx := c.Request().Context()
	activity, err := h.service.VisibleActivity(ctx, c.Param("id"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Activity")
	}

	id := activity.ID.Hex()
	liked, err := h.likes.Toggle(ctx, id, callerID(c))
	if err != nil {
		return toHTTPError(err, "Like")
	}
	eventType := events.LikeRemoved
	if liked {
		eventType = events.LikeCreated
	}
	publish(c, h.publisher, events.New(eventType, callerID(c), id, activity.UserID))
	return h.state(c, id, liked)
}
