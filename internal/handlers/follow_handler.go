package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow and follower listings
type FollowHandler struct {
	follows   repositories.FollowRepository
	profiles  repositories.ProfileRepository
	publisher events.Publisher
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows repositories.FollowRepository, profiles repositories.ProfileRepository, publisher events.Publisher) *FollowHandler {
	return &FollowHandler{follows: follows, profiles: profiles, publisher: publisher}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	auth := middleware.RequireIdentity()
	g.POST("/profiles/:id/follow", h.Follow, auth)
	g.DELETE("/profiles/:id/follow", h.Unfollow, auth)
	g.GET("/profiles/:id/followers", h.GetFollowers)
	g.GET("/profiles/:id/following", h.GetFollowing)
}

// target resolves the :id profile, 404 if it does not exist.
func (h *FollowHandler) target(c echo.Context) (*models.Profile, error) {
	id, err := parseProfileID(c)
	if err != nil {
		return nil, err
	}
	profile, err := h.profiles.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, toHTTPError(err, "Profile")
	}
	return profile, nil
}

// Follow makes the caller follow the :id profile
func (h *FollowHandler) Follow(c echo.Context) error {
	target, err := h.target(c)
	if err != nil {
		return err
	}
	me := callerID(c)
	if target.ID == me {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	if err := h.follows.Follow(c.Request().Context(), me, target.ID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Already following this profile")
		}
		return toHTTPError(err, "Follow")
	}

	subject := strconv.FormatUint(uint64(target.ID), 10)
	publish(c, h.publisher, events.New(events.FollowCreated, me, subject, target.ID))
	return respond(c, http.StatusCreated, echo.Map{"following": true})
}

// Unfollow removes the caller's follow edge to the :id profile
func (h *FollowHandler) Unfollow(c echo.Context) error {
	target, err := h.target(c)
	if err != nil {
		return err
	}
	if err := h.follows.Unfollow(c.Request().Context(), callerID(c), target.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Not following this profile")
		}
		return toHTTPError(err, "Follow")
	}
	return respond(c, http.StatusOK, echo.Map{"following": false})
}

// GetFollowers lists who follows the :id profile
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	target, err := h.target(c)
	if err != nil {
		return err
	}
	profiles, err := h.follows.GetFollowers(c.Request().Context(), target.ID)
	if err != nil {
		return toHTTPError(err, "Followers")
	}
	return respond(c, http.StatusOK, compact(profiles))
}

// GetFollowing lists whom the :id profile follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	target, err := h.target(c)
	if err != nil {
		return err
	}
	profiles, err := h.follows.GetFollowing(c.Request().Context(), target.ID)
	if err != nil {
		return toHTTPError(err, "Following")
	}
	return respond(c, http.StatusOK, compact(profiles))
}

func compact(profiles []models.Profile) []models.ProfileCompact {
	out := make([]models.ProfileCompact, len(profiles))
	for i, p := range profiles {
		out[i] = p.ToCompact()
	}
	return out
}
