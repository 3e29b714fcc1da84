// Package events publishes engagement events for downstream consumers
// (notifications, analytics). Publishing is best effort: callers log
// failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names an engagement event.
type Type string

const (
	LikeCreated    Type = "like.created"
	LikeRemoved    Type = "like.removed"
	CommentCreated Type = "comment.created"
	FollowCreated  Type = "follow.created"
	ActivityShared Type = "activity.shared"
)

// Event is the JSON payload written to the topic.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	ActorID    uint      `json:"actor_id,omitempty"` // zero for anonymous actions such as shares
	SubjectID  string    `json:"subject_id"`         // activity ID or followee profile ID
	OwnerID    uint      `json:"owner_id,omitempty"` // profile that owns the subject
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps a fresh event.
func New(eventType Type, actorID uint, subjectID string, ownerID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
