package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/anonto42/focusfeed/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 3 * time.Second

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func viewerOf(c echo.Context) feed.Viewer {
	return middleware.ViewerFrom(c)
}

// callerID returns the authenticated profile ID. Only valid on routes
// guarded by RequireIdentity.
func callerID(c echo.Context) uint {
	id, _ := middleware.ViewerFrom(c).ID()
	return id
}

func parseProfileID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid profile ID")
	}
	return uint(id), nil
}

func parseCommentID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}

func pageRequest(c echo.Context) (feed.PageRequest, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return feed.PageRequest{}, err
	}
	size, err := queryInt(c, "page_size", feed.DefaultPageSize)
	if err != nil {
		return feed.PageRequest{}, err
	}
	req := feed.PageRequest{Page: page, PageSize: size}
	if err := req.Validate(); err != nil {
		return feed.PageRequest{}, toHTTPError(err, "")
	}
	return req, nil
}

func pageMeta(page *feed.Page) echo.Map {
	return echo.Map{
		"current_page":   page.Page,
		"items_per_page": page.PageSize,
		"total_items":    page.Total,
		"total_pages":    page.TotalPages(),
		"has_next_page":  int64(page.Page) < page.TotalPages(),
	}
}

// normalizer is implemented by request bodies that tidy themselves before validation.
type normalizer interface {
	Normalize()
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := c.Validate(req); err != nil {
		return toHTTPError(err, "")
	}
	return nil
}

// toHTTPError maps domain and store errors onto HTTP responses. resource
// names the thing that was looked up, for 404 and 409 messages.
func toHTTPError(err error, resource string) error {
	var (
		httpErr *echo.HTTPError
		verr    *validators.ValidationError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, resource+" not found")
	case errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, resource+" already exists")
	case feed.IsValidationError(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	default:
		log.Error().Err(err).Str("resource", resource).Msg("request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// publish emits an engagement event. Failures are logged, never returned.
func publish(c echo.Context, publisher events.Publisher, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event_type", string(event.Type)).
			Str("subject_id", event.SubjectID).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("publish engagement event")
	}
}
