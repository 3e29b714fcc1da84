//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("focusfeed"),
		postgrescontainer.WithUsername("focusfeed"),
		postgrescontainer.WithPassword("focusfeed"),
		postgrescontainer.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Follow{}, &models.Like{}, &models.Comment{}))
	return db
}

func provision(t *testing.T, repo *PostgresProfileRepository, subject string) *models.Profile {
	t.Helper()
	p, err := repo.ResolveSubject(context.Background(), subject, models.ProfileSeed{DisplayName: subject})
	require.NoError(t, err)
	return p
}

func TestPostgresRepositories(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()

	profiles := NewPostgresProfileRepository(db)
	likes := NewPostgresLikeRepository(db)
	comments := NewPostgresCommentRepository(db)
	follows := NewPostgresFollowRepository(db)

	alice := provision(t, profiles, "jwt:alice")
	bob := provision(t, profiles, "jwt:bob")

	t.Run("subject resolution is idempotent", func(t *testing.T) {
		again := provision(t, profiles, "jwt:alice")
		assert.Equal(t, alice.ID, again.ID)
		assert.Equal(t, models.ThemeSystem, again.Theme)
		assert.Regexp(t, `^user_[0-9a-f]{12}$`, again.Handle)
	})

	t.Run("handle conflict", func(t *testing.T) {
		alice.Handle = "Alice"
		require.NoError(t, profiles.Update(ctx, alice))
		assert.Equal(t, "alice", alice.Handle)

		found, err := profiles.GetByHandle(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)

		bob.Handle = "alice"
		assert.ErrorIs(t, profiles.Update(ctx, bob), ErrConflict)

		_, err = profiles.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("likes", func(t *testing.T) {
		activityID := primitive.NewObjectID().Hex()
		other := primitive.NewObjectID().Hex()

		liked, err := likes.Toggle(ctx, activityID, bob.ID)
		require.NoError(t, err)
		assert.True(t, liked)
		liked, err = likes.Toggle(ctx, activityID, bob.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		require.NoError(t, likes.Like(ctx, activityID, bob.ID))
		assert.ErrorIs(t, likes.Like(ctx, activityID, bob.ID), ErrConflict)
		require.NoError(t, likes.Like(ctx, activityID, alice.ID))

		counts, err := likes.CountByActivityIDs(ctx, []string{activityID, other})
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[activityID])
		assert.Zero(t, counts[other])

		mine, err := likes.LikedActivityIDs(ctx, bob.ID, []string{activityID, other})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{activityID: true}, mine)

		require.NoError(t, likes.Unlike(ctx, activityID, bob.ID))
		assert.ErrorIs(t, likes.Unlike(ctx, activityID, bob.ID), ErrNotFound)

		require.NoError(t, likes.DeleteByActivity(ctx, activityID))
		counts, err = likes.CountByActivityIDs(ctx, []string{activityID})
		require.NoError(t, err)
		assert.Zero(t, counts[activityID])
	})

	t.Run("comments oldest first", func(t *testing.T) {
		activityID := primitive.NewObjectID().Hex()
		first := &models.Comment{ActivityID: activityID, UserID: bob.ID, Text: "first"}
		require.NoError(t, comments.Create(ctx, first))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, comments.Create(ctx, &models.Comment{ActivityID: activityID, UserID: alice.ID, Text: "second"}))

		thread, err := comments.ListByActivity(ctx, activityID)
		require.NoError(t, err)
		require.Len(t, thread, 2)
		assert.Equal(t, "first", thread[0].Text)
		assert.Equal(t, "second", thread[1].Text)

		first.Text = "edited"
		require.NoError(t, comments.Update(ctx, first))
		got, err := comments.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Text)

		counts, err := comments.CountByActivityIDs(ctx, []string{activityID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[activityID])

		require.NoError(t, comments.Delete(ctx, first.ID))
		assert.ErrorIs(t, comments.Delete(ctx, first.ID), ErrNotFound)
	})

	t.Run("follows", func(t *testing.T) {
		require.NoError(t, follows.Follow(ctx, bob.ID, alice.ID))
		assert.ErrorIs(t, follows.Follow(ctx, bob.ID, alice.ID), ErrConflict)

		ok, err := follows.IsFollowing(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = follows.IsFollowing(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ids, err := follows.GetFollowingIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{alice.ID}, ids)

		followers, err := follows.GetFollowers(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, followers, 1)
		assert.Equal(t, bob.ID, followers[0].ID)

		n, err := follows.GetFollowersCount(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, follows.Unfollow(ctx, bob.ID, alice.ID))
		assert.ErrorIs(t, follows.Unfollow(ctx, bob.ID, alice.ID), ErrNotFound)
	})
}
