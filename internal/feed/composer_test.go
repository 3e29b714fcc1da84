package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_GlobalOnlyPublic(t *testing.T) {
	f := newFixture(t)
	alice := f.profile(t, "alice")
	bob := f.profile(t, "bob")

	older := f.activity(t, alice.ID, models.VisibilityPublic, f.now.Add(-2*time.Hour))
	f.activity(t, alice.ID, models.VisibilityPrivate, f.now.Add(-90*time.Minute))
	newer := f.activity(t, bob.ID, models.VisibilityPublic, f.now.Add(-time.Hour))

	composer := NewComposer(f.store.Activities, f.store.Follows)
	for _, viewer := range []Viewer{Anonymous(), Member(alice.ID)} {
		page, err := composer.Compose(context.Background(), FeedRequest{
			Scope:       ScopeGlobal,
			Viewer:      viewer,
			PageRequest: PageRequest{Page: 1, PageSize: 20},
		})
		require.NoError(t, err)
		assert.Equal(t, ScopeGlobal, page.Scope)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, ids([]models.Activity{newer, older}), ids(page.Activities), "viewer %s", viewer)
	}
}

func TestComposer_Personalized(t *testing.T) {
	f := newFixture(t)
	me := f.profile(t, "me")
	friend := f.profile(t, "friend")
	stranger := f.profile(t, "stranger")
	f.follow(t, me.ID, friend.ID)

	mine := f.activity(t, me.ID, models.VisibilityPrivate, f.now.Add(-3*time.Hour))
	friends := f.activity(t, friend.ID, models.VisibilityPrivate, f.now.Add(-2*time.Hour))
	f.activity(t, stranger.ID, models.VisibilityPublic, f.now.Add(-time.Hour))
	f.activity(t, stranger.ID, models.VisibilityPrivate, f.now.Add(-time.Minute))

	page, err := NewComposer(f.store.Activities, f.store.Follows).Compose(context.Background(), FeedRequest{
		Scope:       ScopePersonalized,
		Viewer:      Member(me.ID),
		PageRequest: PageRequest{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, ScopePersonalized, page.Scope)
	assert.Equal(t, ids([]models.Activity{friends, mine}), ids(page.Activities))
	assert.Equal(t, int64(2), page.Total)
}

func TestComposer_AnonymousPersonalizedFallsBackToGlobal(t *testing.T) {
	f := newFixture(t)
	alice := f.profile(t, "alice")
	public := f.activity(t, alice.ID, models.VisibilityPublic, f.now.Add(-time.Hour))
	f.activity(t, alice.ID, models.VisibilityPrivate, f.now)

	page, err := NewComposer(f.store.Activities, f.store.Follows).Compose(context.Background(), FeedRequest{
		Scope:       ScopePersonalized,
		Viewer:      Anonymous(),
		PageRequest: PageRequest{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, page.Scope)
	assert.Equal(t, ids([]models.Activity{public}), ids(page.Activities))
}

func TestComposer_PastLastPageIsEmpty(t *testing.T) {
	f := newFixture(t)
	alice := f.profile(t, "alice")
	for i := 0; i < 5; i++ {
		f.activity(t, alice.ID, models.VisibilityPublic, f.now.Add(-time.Duration(i)*time.Minute))
	}

	page, err := NewComposer(f.store.Activities, f.store.Follows).Compose(context.Background(), FeedRequest{
		Scope:       ScopeGlobal,
		PageRequest: PageRequest{Page: 100, PageSize: 20},
	})
	require.NoError(t, err)
	assert.NotNil(t, page.Activities)
	assert.Empty(t, page.Activities)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(1), page.TotalPages())
}

func TestComposer_PaginationIsStableOnTies(t *testing.T) {
	f := newFixture(t)
	alice := f.profile(t, "alice")
	at := f.now.Add(-time.Hour)
	var all []models.Activity
	for i := 0; i < 5; i++ {
		all = append(all, f.activity(t, alice.ID, models.VisibilityPublic, at))
	}

	composer := NewComposer(f.store.Activities, f.store.Follows)
	var seen []string
	for page := 1; page <= 3; page++ {
		p, err := composer.Compose(context.Background(), FeedRequest{
			Scope:       ScopeGlobal,
			PageRequest: PageRequest{Page: page, PageSize: 2},
		})
		require.NoError(t, err)
		seen = append(seen, ids(p.Activities)...)
	}

	require.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i], "equal timestamps order by descending id")
	}
	assert.ElementsMatch(t, ids(all), seen)
}

func TestComposer_RejectsBadRequests(t *testing.T) {
	composer := NewComposer(nil, nil)
	tests := []struct {
		name string
		req  FeedRequest
		want error
	}{
		{"zero page", FeedRequest{Scope: ScopeGlobal, PageRequest: PageRequest{Page: 0, PageSize: 10}}, ErrInvalidPage},
		{"zero size", FeedRequest{Scope: ScopeGlobal, PageRequest: PageRequest{Page: 1, PageSize: 0}}, ErrInvalidPageSize},
		{"size over cap", FeedRequest{Scope: ScopeGlobal, PageRequest: PageRequest{Page: 1, PageSize: MaxPageSize + 1}}, ErrInvalidPageSize},
		{"unknown scope", FeedRequest{Scope: "friends", PageRequest: PageRequest{Page: 1, PageSize: 10}}, ErrInvalidScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := composer.Compose(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestParseScope(t *testing.T) {
	scope, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, scope)

	scope, err = ParseScope("personalized")
	require.NoError(t, err)
	assert.Equal(t, ScopePersonalized, scope)

	_, err = ParseScope("Personalized")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

type failingFinder struct{ err error }

func (f failingFinder) Find(context.Context, repositories.ActivityQuery) ([]models.Activity, error) {
	return nil, f.err
}

func (f failingFinder) Count(context.Context, repositories.ActivityQuery) (int64, error) {
	return 0, f.err
}

func TestComposer_SurfacesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	f := newFixture(t)
	composer := NewComposer(failingFinder{err: boom}, f.store.Follows)

	_, err := composer.Compose(context.Background(), FeedRequest{
		Scope:       ScopeGlobal,
		PageRequest: PageRequest{Page: 1, PageSize: 10},
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsValidationError(err))
}

func TestComposer_ComposeOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.profile(t, "owner")
	follower := f.profile(t, "follower")
	stranger := f.profile(t, "stranger")
	f.follow(t, follower.ID, owner.ID)

	public := f.activity(t, owner.ID, models.VisibilityPublic, f.now.Add(-2*time.Hour))
	private := f.activity(t, owner.ID, models.VisibilityPrivate, f.now.Add(-time.Hour))

	composer := NewComposer(f.store.Activities, f.store.Follows)
	req := PageRequest{Page: 1, PageSize: 10}

	tests := []struct {
		name   string
		viewer Viewer
		want   []models.Activity
	}{
		{"owner", Member(owner.ID), []models.Activity{private, public}},
		{"follower", Member(follower.ID), []models.Activity{private, public}},
		{"stranger", Member(stranger.ID), []models.Activity{public}},
		{"anonymous", Anonymous(), []models.Activity{public}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := composer.ComposeOwner(context.Background(), owner.ID, tt.viewer, req)
			require.NoError(t, err)
			assert.Equal(t, ids(tt.want), ids(page.Activities))
			assert.Equal(t, int64(len(tt.want)), page.Total)
		})
	}
}
