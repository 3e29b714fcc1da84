package models

import "time"

// Like records that a profile liked an activity. At most one per (activity, profile).
type Like struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActivityID string    `json:"activity_id" gorm:"size:24;not null;index;uniqueIndex:idx_activity_liker"` // MongoDB ObjectID hex
	UserID     uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_activity_liker"`
	CreatedAt  time.Time `json:"created_at"`
}
