package feed

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

// fixture wires the feed against the in-memory stores.
type fixture struct {
	store   *memory.Backend
	service *Service
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	svc := NewService(store.Activities, store.Likes, store.Comments, store.Profiles, store.Follows,
		WithClock(func() time.Time { return now }))
	return &fixture{store: store, service: svc, now: now}
}

func (f *fixture) profile(t *testing.T, handle string) models.Profile {
	t.Helper()
	return f.store.Profiles.Add(models.Profile{Handle: handle, DisplayName: handle, AuthSubject: "test:" + handle})
}

func (f *fixture) activity(t *testing.T, owner uint, visibility models.Visibility, createdAt time.Time) models.Activity {
	t.Helper()
	a := &models.Activity{
		UserID:          owner,
		Category:        "deep-work",
		DurationMinutes: 30,
		Visibility:      visibility,
		CreatedAt:       createdAt,
	}
	require.NoError(t, f.store.Activities.Create(context.Background(), a))
	return *a
}

func (f *fixture) follow(t *testing.T, follower, followee uint) {
	t.Helper()
	require.NoError(t, f.store.Follows.Follow(context.Background(), follower, followee))
}

func ids(activities []models.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.ID.Hex()
	}
	return out
}
