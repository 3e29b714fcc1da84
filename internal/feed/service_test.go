package feed

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_FeedAnnotatesOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.profile(t, "alice")
	bob := f.profile(t, "bob")
	a := f.activity(t, alice.ID, models.VisibilityPublic, f.now.Add(-time.Hour))
	require.NoError(t, f.store.Likes.Like(ctx, a.ID.Hex(), bob.ID))

	result, err := f.service.Feed(ctx, FeedRequest{
		Scope:       ScopeGlobal,
		Viewer:      Member(bob.ID),
		PageRequest: PageRequest{Page: 1, PageSize: DefaultPageSize},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, alice.ToCompact(), item.Owner)
	assert.Equal(t, int64(1), item.LikeCount)
	assert.True(t, item.ViewerLiked)
	assert.Equal(t, int64(1), result.Total)
}

func TestService_ActivityHiddenFromStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.profile(t, "owner")
	follower := f.profile(t, "follower")
	stranger := f.profile(t, "stranger")
	f.follow(t, follower.ID, owner.ID)
	private := f.activity(t, owner.ID, models.VisibilityPrivate, f.now)

	_, err := f.service.Activity(ctx, private.ID.Hex(), Member(stranger.ID))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = f.service.Activity(ctx, private.ID.Hex(), Anonymous())
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = f.service.Activity(ctx, "not-an-id", Member(owner.ID))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	detail, err := f.service.Activity(ctx, private.ID.Hex(), Member(follower.ID))
	require.NoError(t, err)
	assert.Equal(t, private.ID, detail.ID)

	detail, err = f.service.Activity(ctx, private.ID.Hex(), Member(owner.ID))
	require.NoError(t, err)
	assert.Equal(t, owner.ToCompact(), detail.Owner)
}

func TestService_ActivityCommentsOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.profile(t, "alice")
	bob := f.profile(t, "bob")
	a := f.activity(t, alice.ID, models.VisibilityPublic, f.now)

	second := &models.Comment{ActivityID: a.ID.Hex(), UserID: alice.ID, Text: "thanks", CreatedAt: f.now.Add(time.Minute)}
	first := &models.Comment{ActivityID: a.ID.Hex(), UserID: bob.ID, Text: "great session", CreatedAt: f.now}
	require.NoError(t, f.store.Comments.Create(ctx, second))
	require.NoError(t, f.store.Comments.Create(ctx, first))

	detail, err := f.service.Activity(ctx, a.ID.Hex(), Anonymous())
	require.NoError(t, err)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "great session", detail.Comments[0].Text)
	assert.Equal(t, bob.ToCompact(), detail.Comments[0].Author)
	assert.Equal(t, "thanks", detail.Comments[1].Text)
	assert.Equal(t, int64(2), detail.CommentCount)
	assert.False(t, detail.ViewerLiked)
}

func TestService_ProfileStatsFollowVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.profile(t, "owner")
	follower := f.profile(t, "follower")
	stranger := f.profile(t, "stranger")
	f.follow(t, follower.ID, owner.ID)

	f.activity(t, owner.ID, models.VisibilityPublic, f.now.Add(-time.Hour))
	f.activity(t, owner.ID, models.VisibilityPrivate, f.now.Add(-25*time.Hour))

	view, err := f.service.Profile(ctx, owner.ID, Member(follower.ID))
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalSessions: 2, TotalHours: 1, CurrentStreak: 2}, view.Stats)
	assert.Equal(t, int64(1), view.FollowerCount)
	assert.Zero(t, view.FollowingCount)
	require.NotNil(t, view.IsFollowing)
	assert.True(t, *view.IsFollowing)

	view, err = f.service.Profile(ctx, owner.ID, Member(stranger.ID))
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalSessions: 1, TotalHours: 0.5, CurrentStreak: 1}, view.Stats)
	require.NotNil(t, view.IsFollowing)
	assert.False(t, *view.IsFollowing)

	view, err = f.service.Profile(ctx, owner.ID, Anonymous())
	require.NoError(t, err)
	assert.Nil(t, view.IsFollowing)

	view, err = f.service.Profile(ctx, owner.ID, Member(owner.ID))
	require.NoError(t, err)
	assert.Nil(t, view.IsFollowing)
	assert.Equal(t, 2, view.Stats.TotalSessions)
}

func TestService_ProfileByHandle(t *testing.T) {
	f := newFixture(t)
	alice := f.profile(t, "alice")

	view, err := f.service.ProfileByHandle(context.Background(), "ALICE", Anonymous())
	require.NoError(t, err)
	assert.Equal(t, alice.ID, view.ID)

	_, err = f.service.ProfileByHandle(context.Background(), "nobody", Anonymous())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestService_StreakUsesConfiguredLocation(t *testing.T) {
	store := newFixture(t).store
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 2024-03-10 03:00 UTC is still 2024-03-09 in Los Angeles.
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	svc := NewService(store.Activities, store.Likes, store.Comments, store.Profiles, store.Follows,
		WithClock(func() time.Time { return now }), WithLocation(la))

	owner := store.Profiles.Add(models.Profile{Handle: "owner", AuthSubject: "test:owner"})
	for _, ts := range []time.Time{
		time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, store.Activities.Create(context.Background(), &models.Activity{
			UserID: owner.ID, DurationMinutes: 10, Visibility: models.VisibilityPublic, CreatedAt: ts,
		}))
	}

	view, err := svc.Profile(context.Background(), owner.ID, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.CurrentStreak)
}

func TestService_OwnerActivitiesUnknownProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.OwnerActivities(context.Background(), 404, Anonymous(), PageRequest{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
