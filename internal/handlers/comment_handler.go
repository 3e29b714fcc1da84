package handlers

import (
	"net/http"

	"github.com/anonto42/focusfeed/backend/internal/events"
	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/middleware"
	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments  repositories.CommentRepository
	service   *feed.Service
	publisher events.Publisher
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments repositories.CommentRepository, service *feed.Service, publisher events.Publisher) *CommentHandler {
	return &CommentHandler{comments: comments, service: service, publisher: publisher}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	auth := middleware.RequireIdentity()
	g.POST("/activities/:id/comments", h.CreateComment, auth)
	g.GET("/activities/:id/comments", h.GetComments)
	g.PUT("/comments/:id", h.UpdateComment, auth)
	g.DELETE("/comments/:id", h.DeleteComment, auth)
}

// CreateComment adds a comment to an activity the caller can read
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	activity, err := h.service.VisibleActivity(ctx, c.Param("id"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Activity")
	}

	comment := &models.Comment{
		ActivityID: activity.ID.Hex(),
		UserID:     callerID(c),
		Text:       req.Text,
	}
	if err := h.comments.Create(ctx, comment); err != nil {
		return toHTTPError(err, "Comment")
	}

	publish(c, h.publisher, events.New(events.CommentCreated, comment.UserID, comment.ActivityID, activity.UserID))
	return respond(c, http.StatusCreated, comment)
}

// GetComments returns an activity's comments, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.service.Comments(c.Request().Context(), c.Param("id"), viewerOf(c))
	if err != nil {
		return toHTTPError(err, "Activity")
	}
	return respond(c, http.StatusOK, comments)
}

// ownedComment loads a comment the caller wrote. Anyone else's comment is
// reported as missing.
func (h *CommentHandler) ownedComment(c echo.Context) (*models.Comment, error) {
	id, err := parseCommentID(c)
	if err != nil {
		return nil, err
	}
	comment, err := h.comments.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, toHTTPError(err, "Comment")
	}
	if !viewerOf(c).Is(comment.UserID) {
		return nil, toHTTPError(repositories.ErrNotFound, "Comment")
	}
	return comment, nil
}

// UpdateComment edits the caller's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.ownedComment(c)
	if err != nil {
		return err
	}
	comment.Text = req.Text
	if err := h.comments.Update(c.Request().Context(), comment); err != nil {
		return toHTTPError(err, "Comment")
	}
	return respond(c, http.StatusOK, comment)
}

// DeleteComment removes the caller's own comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	comment, err := h.ownedComment(c)
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.Request().Context(), comment.ID); err != nil {
		return toHTTPError(err, "Comment")
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Comment deleted"})
}
