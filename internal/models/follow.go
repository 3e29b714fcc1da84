package models

import "time"

// Follow is a directed edge: FollowerID follows FolloweeID.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_followee"`
	FolloweeID uint      `json:"followee_id" gorm:"not null;index;uniqueIndex:idx_follower_followee;check:chk_follows_not_self,follower_id <> followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
