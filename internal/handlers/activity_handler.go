package handlers

import (
	"net/http"

	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ActivityHandler handles HTTP requests related to activities
type ActivityHandler struct {
	activities repositories.ActivityRepository
	likes      repositories.LikeRepository
	comments   repositories.CommentRepository
	service    *feed.Service
	publisher  events.Publisher
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(
	activities repositories.ActivityRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	service *feed.Service,
	publisher events.Publisher,
) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		likes:      likes,
		comments:   comments,
		service:    service,
		publisher:  publisher,
	}
}

// RegisterActivityRoutes registers activity-related routes
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	auth := middleware.RequireIdentity()
	g.POST("/activities", h.CreateActivity, auth)
	g.GET("/activities/:id", h.GetActivity)
	g.PUT("/activities/:id", h.UpdateActivity, auth)
	g.DELETE("/activities/:id", h.DeleteActivity, auth)
	g.POST("/activities/:id/share", h.ShareActivity)
}

// CreateActivity logs a new focus session for the caller
func (h *ActivityHandler) CreateActivity(c echo.Context) error {
	var req models.CreateActivityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	activity := &models.Activity{
		UserID:          callerID(c),
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		Note:            req.Note,
		EvidenceURL:     req.EvidenceURL,
		FocusRating:     req.FocusRating,
		Visibility:      visibility,
	}
	if err := h.activities.Create(c.Request().Context(), activity); err != nil {
		return toHTTPError(err, "Activity")
	}
	return respond(c, http.StatusCreated, activity)
}

// GetActivity returns one activity with engagement and its comment thread
func (h *ActivityHandler) GetActivity(c echo.Context) error {
	detail, err := h.service.Activity(c.Request().Context(), c.Param("id"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Activity")
	}
	return respond(c, http.StatusOK, detail)
}

// ownedActivity loads an activity the caller owns. Someone else's activity
// is reported as missing.
func (h *ActivityHandler) ownedActivity(c echo.Context) (*models.Activity, error) {
	activity, err := h.activities.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, toHTTPError(err, "Activity")
	}
	if !viewerOf(c).Is(activity.UserID) {
		return nil, toHTTPError(repositories.ErrNotFound, "Activity")
	}
	return activity, nil
}

// UpdateActivity edits the caller's own activity
func (h *ActivityHandler) UpdateActivity(c echo.Context) error {
	var req models.UpdateActivityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	activity, err := h.ownedActivity(c)
	if err != nil {
		return err
	}
	req.Apply(activity)

	if err := h.activities.Update(c.Request().Context(), activity); err != nil {
		return toHTTPError(err, "Activity")
	}
	return respond(c, http.StatusOK, activity)
}

// DeleteActivity removes the caller's own activity with its likes and comments
func (h *ActivityHandler) DeleteActivity(c echo.Context) error {
	activity, err := h.ownedActivity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := activity.ID.Hex()
	if err := h.activities.Delete(ctx, id); err != nil {
		return toHTTPError(err, "Activity")
	}
	if err := h.likes.DeleteByActivity(ctx, id); err != nil {
		log.Error().Err(err).Str("activity_id", id).Msg("delete likes of removed activity")
	}
	if err := h.comments.DeleteByActivity(ctx, id); err != nil {
		log.Error().Err(err).Str("activity_id", id).Msg("delete comments of removed activity")
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Activity deleted"})
}

// ShareActivity bumps the share counter of any activity the caller can read.
// Anonymous callers may share public activities.
func (h *ActivityHandler) ShareActivity(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := viewerOf(c)
	activity, err := h.service.VisibleActivity(ctx, c.Param("id"), viewer)
	if err != nil {
		return toHTTPError(err, "Activity")
	}

	id := activity.ID.Hex()
	count, err := h.activities.IncrementShareCount(ctx, id)
	if err != nil {
		return toHTTPError(err, "Activity")
	}

	actorID, _ := viewer.ID()
	publish(c, h.publisher, events.New(events.ActivityShared, actorID, id, activity.UserID))
	return respond(c, http.StatusOK, echo.Map{"share_count": count})
}
