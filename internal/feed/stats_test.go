package feed

import (
	"testing"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	now := day(2024, time.March, 10, 20)

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Stats{}, ComputeStats(nil, now))
	})

	t.Run("ninety minutes", func(t *testing.T) {
		stats := ComputeStats([]Session{
			{DurationMinutes: 45, CreatedAt: day(2024, 3, 10, 9)},
			{DurationMinutes: 45, CreatedAt: day(2024, 3, 9, 9)},
		}, now)
		assert.Equal(t, Stats{TotalSessions: 2, TotalHours: 1.5, CurrentStreak: 2}, stats)
	})

	t.Run("stale history has no streak", func(t *testing.T) {
		stats := ComputeStats([]Session{{DurationMinutes: 60, CreatedAt: day(2024, 3, 1, 9)}}, now)
		assert.Equal(t, 1, stats.TotalSessions)
		assert.Equal(t, 1.0, stats.TotalHours)
		assert.Zero(t, stats.CurrentStreak)
	})
}

func TestHoursRounded(t *testing.T) {
	tests := []struct {
		minutes int64
		want    float64
	}{
		{0, 0},
		{2, 0},
		{3, 0.1}, // 0.05h rounds up
		{6, 0.1},
		{50, 0.8},
		{57, 1},
		{90, 1.5},
		{125, 2.1},
		{1439, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hoursRounded(tt.minutes), "%d minutes", tt.minutes)
	}
}

func TestSessionsOf(t *testing.T) {
	created := day(2024, 3, 10, 9)
	sessions := SessionsOf([]models.Activity{{DurationMinutes: 25, CreatedAt: created}})
	assert.Equal(t, []Session{{DurationMinutes: 25, CreatedAt: created}}, sessions)
}
