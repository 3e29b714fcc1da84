package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ProfileHandler handles HTTP requests related to profiles
type ProfileHandler struct {
	profiles repositories.ProfileRepository
	service  *feed.Service
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles repositories.ProfileRepository, service *feed.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, service: service}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	auth := middleware.RequireIdentity()
	g.GET("/me", h.GetMe, auth)
	g.PUT("/me", h.UpdateMe, auth)
	g.GET("/profiles/:id", h.GetProfile)
	g.GET("/profiles/handle/:handle", h.GetProfileByHandle)
	g.GET("/profiles/:id/activities", h.GetProfileActivities)
}

// GetProfile returns a profile page with stats and follow counts
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	id, err := parseProfileID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Profile(c.Request().Context(), id, viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Profile")
	}
	return respond(c, http.StatusOK, view)
}

func (h *ProfileHandler) GetProfileByHandle(c echo.Context) error {
	view, err := h.service.ProfileByHandle(c.Request().Context(), c.Param("handle"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Profile")
	}
	return respond(c, http.StatusOK, view)
}

// GetProfileActivities lists a profile's activities the caller may read
func (h *ProfileHandler) GetProfileActivities(c echo.Context) error {
	id, err := parseProfileID(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	result, err := h.service.OwnerActivities(c.Request().Context(), id, viewerOf(c), page)
	if err != nil {
		return toHTTPError(err, "Profile")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    result.Items,
		"meta":    pageMeta(result.Page),
	})
}

// GetMe returns the caller's full profile, including private settings
func (h *ProfileHandler) GetMe(c echo.Context) error {
	profile, err := h.profiles.GetByID(c.Request().Context(), callerID(c))
	if err != nil {
		return toHTTPError(err, "Profile")
	}
	return respond(c, http.StatusOK, profile)
}

// UpdateMe edits the caller's profile
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	profile, err := h.profiles.GetByID(ctx, callerID(c))
	if err != nil {
		return toHTTPError(err, "Profile")
	}

	req.Apply(profile)

	if err := h.profiles.Update(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Handle already taken")
		}
		return toHTTPError(err, "Profile")
	}
	return respond(c, http.StatusOK, profile)
}
