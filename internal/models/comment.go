package models

import (
	"strings"
	"time"
)

// Comment is a text reply to an activity
type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActivityID string    `json:"activity_id" gorm:"size:24;not null;index"` // MongoDB ObjectID hex
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the request body for commenting on an activity
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

func (r *CreateCommentRequest) Normalize() { r.Text = strings.TrimSpace(r.Text) }

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

func (r *UpdateCommentRequest) Normalize() { r.Text = strings.TrimSpace(r.Text) }
