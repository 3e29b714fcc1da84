package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityQuery narrows a listing of activities. Results are always ordered
// newest first, ties broken by descending ID.
type ActivityQuery struct {
	// PublicOnly restricts results to public activities.
	PublicOnly bool
	// OwnerIDs restricts results to these owners when non-nil. An empty,
	// non-nil slice matches nothing.
	OwnerIDs []uint
	Skip     int64
	Limit    int64 // 0 means no limit
}

func (q ActivityQuery) filter() bson.M {
	filter := bson.M{}
	if q.PublicOnly {
		filter["visibility"] = models.VisibilityPublic
	}
	if q.OwnerIDs != nil {
		filter["user_id"] = bson.M{"$in": q.OwnerIDs}
	}
	return filter
}

// ActivityRepository defines the interface for activity data operations
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Find(ctx context.Context, q ActivityQuery) ([]models.Activity, error)
	Count(ctx context.Context, q ActivityQuery) (int64, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	IncrementShareCount(ctx context.Context, id string) (int64, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// EnsureIndexes creates the indexes backing feed and profile listings.
func (r *MongoActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create activity indexes: %w", err)
	}
	return nil
}

// Create stores a new activity. ID and CreatedAt are assigned when unset.
func (r *MongoActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	now := time.Now().UTC()
	if activity.ID.IsZero() {
		activity.ID = primitive.NewObjectID()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *MongoActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var activity models.Activity
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&activity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find activity %s: %w", id, err)
	}
	return &activity, nil
}

// Find lists activities matching q, newest first.
func (r *MongoActivityRepository) Find(ctx context.Context, q ActivityQuery) ([]models.Activity, error) {
	activities := make([]models.Activity, 0)
	if q.OwnerIDs != nil && len(q.OwnerIDs) == 0 {
		return activities, nil
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if q.Skip > 0 {
		findOptions.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		findOptions.SetLimit(q.Limit)
	}
	cursor, err := r.collection.Find(ctx, q.filter(), findOptions)
	if err != nil {
		return nil, fmt.Errorf("find activities: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

// Count returns how many activities match q, ignoring Skip and Limit.
func (r *MongoActivityRepository) Count(ctx context.Context, q ActivityQuery) (int64, error) {
	if q.OwnerIDs != nil && len(q.OwnerIDs) == 0 {
		return 0, nil
	}
	total, err := r.collection.CountDocuments(ctx, q.filter())
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return total, nil
}

// Update replaces the mutable fields of an existing activity.
func (r *MongoActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"category":         activity.Category,
			"duration_minutes": activity.DurationMinutes,
			"note":             activity.Note,
			"evidence_url":     activity.EvidenceURL,
			"focus_rating":     activity.FocusRating,
			"visibility":       activity.Visibility,
			"updated_at":       activity.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": activity.ID}, update)
	if err != nil {
		return fmt.Errorf("update activity %s: %w", activity.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoActivityRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementShareCount bumps the share counter and returns its new value.
func (r *MongoActivityRepository) IncrementShareCount(ctx context.Context, id string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Activity
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"share_count": 1}}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment share count %s: %w", id, err)
	}
	return updated.ShareCount, nil
}
