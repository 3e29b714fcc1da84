package handlers

import (
	"net/http"

	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	service *feed.Service
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(service *feed.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns a page of the global or personalized timeline. Anonymous
// callers asking for the personalized timeline get the global one; the
// effective scope is echoed back in meta.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	scope, err := feed.ParseScope(c.QueryParam("scope"))
	if err != nil {
		return toHTTPError(err, "")
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}

	result, err := h.service.Feed(c.Request().Context(), feed.FeedRequest{
		Scope:       scope,
		Viewer:      viewerOf(c),
		PageRequest: page,
	})
	if err != nil {
		return toHTTPError(err, "Feed")
	}

	meta := pageMeta(result.Page)
	meta["scope"] = result.Scope
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    result.Items,
		"meta":    meta,
	})
}
