package feed

import (
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
)

// Session is the slice of an activity the stats calculator needs.
type Session struct {
	DurationMinutes int
	CreatedAt       time.Time
}

// Stats are the derived totals shown on a profile.
type Stats struct {
	TotalSessions int     `json:"total_sessions"`
	TotalHours    float64 `json:"total_hours"`
	CurrentStreak int     `json:"current_streak"`
}

// SessionsOf projects activities onto the fields ComputeStats reads.
func SessionsOf(activities []models.Activity) []Session {
	sessions := make([]Session, len(activities))
	for i, a := range activities {
		sessions[i] = Session{DurationMinutes: a.DurationMinutes, CreatedAt: a.CreatedAt}
	}
	return sessions
}

// ComputeStats totals sessions as of now. Empty input yields zero Stats.
func ComputeStats(sessions []Session, now time.Time) Stats {
	if len(sessions) == 0 {
		return Stats{}
	}

	var minutes int64
	timestamps := make([]time.Time, len(sessions))
	for i, s := range sessions {
		minutes += int64(s.DurationMinutes)
		timestamps[i] = s.CreatedAt
	}

	return Stats{
		TotalSessions: len(sessions),
		TotalHours:    hoursRounded(minutes),
		CurrentStreak: CurrentStreak(timestamps, now),
	}
}

// hoursRounded converts minutes to hours rounded half-up to one decimal.
// Works in tenths of an hour (6 minutes) to stay exact.
func hoursRounded(minutes int64) float64 {
	if minutes <= 0 {
		return 0
	}
	tenths := (minutes + 3) / 6
	return float64(tenths) / 10
}
