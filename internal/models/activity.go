package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls who may see an activity.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Activity is a completed focus session, stored in MongoDB.
type Activity struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          uint               `json:"user_id" bson:"user_id"` // owning profile
	Category        string             `json:"category" bson:"category"`
	DurationMinutes int                `json:"duration_minutes" bson:"duration_minutes"`
	Note            string             `json:"note,omitempty" bson:"note,omitempty"`
	EvidenceURL     string             `json:"evidence_url,omitempty" bson:"evidence_url,omitempty"`
	FocusRating     *int               `json:"focus_rating,omitempty" bson:"focus_rating,omitempty"`
	Visibility      Visibility         `json:"visibility" bson:"visibility"`
	ShareCount      int64              `json:"share_count" bson:"share_count"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsPublic reports whether anyone, including anonymous viewers, may see the activity.
func (a Activity) IsPublic() bool {
	return a.Visibility == VisibilityPublic
}

// CreateActivityRequest defines the request body for logging a session.
type CreateActivityRequest struct {
	Category        string     `json:"category" validate:"required,min=1,max=50"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,min=1,max=1440"`
	Note            string     `json:"note,omitempty" validate:"omitempty,max=500"`
	EvidenceURL     string     `json:"evidence_url,omitempty" validate:"omitempty,url"`
	FocusRating     *int       `json:"focus_rating,omitempty" validate:"omitempty,min=1,max=10"`
	Visibility      Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// Normalize trims free-text fields before validation.
func (r *CreateActivityRequest) Normalize() {
	r.Category = strings.TrimSpace(r.Category)
	r.Note = strings.TrimSpace(r.Note)
}

// UpdateActivityRequest defines the request body for editing a session.
// Nil fields are left untouched.
type UpdateActivityRequest struct {
	Category        *string     `json:"category,omitempty" validate:"omitempty,min=1,max=50"`
	DurationMinutes *int        `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
	Note            *string     `json:"note,omitempty" validate:"omitempty,max=500"`
	EvidenceURL     *string     `json:"evidence_url,omitempty" validate:"omitempty,url"`
	FocusRating     *int        `json:"focus_rating,omitempty" validate:"omitempty,min=1,max=10"`
	Visibility      *Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

func (r *UpdateActivityRequest) Normalize() {
	if r.Category != nil {
		trimmed := strings.TrimSpace(*r.Category)
		r.Category = &trimmed
	}
	if r.Note != nil {
		trimmed := strings.TrimSpace(*r.Note)
		r.Note = &trimmed
	}
}

// Apply copies the non-nil fields of the request onto activity.
func (r UpdateActivityRequest) Apply(activity *Activity) {
	if r.Category != nil {
		activity.Category = *r.Category
	}
	if r.DurationMinutes != nil {
		activity.DurationMinutes = *r.DurationMinutes
	}
	if r.Note != nil {
		activity.Note = *r.Note
	}
	if r.EvidenceURL != nil {
		activity.EvidenceURL = *r.EvidenceURL
	}
	if r.FocusRating != nil {
		activity.FocusRating = r.FocusRating
	}
	if r.Visibility != nil {
		activity.Visibility = *r.Visibility
	}
}
