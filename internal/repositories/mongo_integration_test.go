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
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("focusfeed_test")
}

func TestMongoActivityRepository(t *testing.T) {
	db := newMongo(t)
	ctx := context.Background()
	repo := NewMongoActivityRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	seed := func(owner uint, visibility models.Visibility, createdAt time.Time) models.Activity {
		a := &models.Activity{
			UserID:          owner,
			Category:        "study",
			DurationMinutes: 30,
			Visibility:      visibility,
			CreatedAt:       createdAt,
		}
		require.NoError(t, repo.Create(ctx, a))
		return *a
	}

	oldest := seed(1, models.VisibilityPublic, base)
	tieLow := seed(2, models.VisibilityPublic, base.Add(time.Hour))
	tieHigh := seed(1, models.VisibilityPrivate, base.Add(time.Hour))
	newest := seed(3, models.VisibilityPublic, base.Add(2*time.Hour))

	ids := func(activities []models.Activity) []primitive.ObjectID {
		out := make([]primitive.ObjectID, len(activities))
		for i, a := range activities {
			out[i] = a.ID
		}
		return out
	}

	t.Run("newest first with id tie-break", func(t *testing.T) {
		all, err := repo.Find(ctx, ActivityQuery{})
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{newest.ID, tieHigh.ID, tieLow.ID, oldest.ID}, ids(all))
	})

	t.Run("public only with paging", func(t *testing.T) {
		q := ActivityQuery{PublicOnly: true, Skip: 1, Limit: 1}
		page, err := repo.Find(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{tieLow.ID}, ids(page))

		total, err := repo.Count(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("owner filter", func(t *testing.T) {
		mine, err := repo.Find(ctx, ActivityQuery{OwnerIDs: []uint{1}})
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{tieHigh.ID, oldest.ID}, ids(mine))

		none, err := repo.Find(ctx, ActivityQuery{OwnerIDs: []uint{}})
		require.NoError(t, err)
		assert.Empty(t, none)
		n, err := repo.Count(ctx, ActivityQuery{OwnerIDs: []uint{}})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("update and share", func(t *testing.T) {
		got, err := repo.GetByID(ctx, tieHigh.ID.Hex())
		require.NoError(t, err)
		got.Visibility = models.VisibilityPublic
		require.NoError(t, repo.Update(ctx, got))

		reloaded, err := repo.GetByID(ctx, tieHigh.ID.Hex())
		require.NoError(t, err)
		assert.True(t, reloaded.IsPublic())

		for want := int64(1); want <= 2; want++ {
			count, err := repo.IncrementShareCount(ctx, newest.ID.Hex())
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}
		_, err = repo.IncrementShareCount(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repo.Delete(ctx, oldest.ID.Hex()))
		assert.ErrorIs(t, repo.Delete(ctx, oldest.ID.Hex()), ErrNotFound)
	})
}
