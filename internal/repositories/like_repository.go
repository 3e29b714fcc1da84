package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	Like(ctx context.Context, activityID string, userID uint) error
	Unlike(ctx context.Context, activityID string, userID uint) error
	Toggle(ctx context.Context, activityID string, userID uint) (bool, error)
	CountByActivityIDs(ctx context.Context, activityIDs []string) (map[string]int64, error)
	LikedActivityIDs(ctx context.Context, userID uint, activityIDs []string) (map[string]bool, error)
	DeleteByActivity(ctx context.Context, activityID string) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// Like records a like. Returns ErrConflict if the user already liked the activity.
func (r *PostgresLikeRepository) Like(ctx context.Context, activityID string, userID uint) error {
	like := &models.Like{ActivityID: activityID, UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return fmt.Errorf("create like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// Unlike removes a like. Returns ErrNotFound if there was none.
func (r *PostgresLikeRepository) Unlike(ctx context.Context, activityID string, userID uint) error {
	res := r.db.WithContext(ctx).Where("activity_id = ? AND user_id = ?", activityID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return fmt.Errorf("delete like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips the like state in one transaction and reports whether the
// user likes the activity afterwards.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, activityID string, userID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("activity_id = ? AND user_id = ?", activityID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		like := &models.Like{ActivityID: activityID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return liked, nil
}

type activityTotal struct {
	ActivityID string
	Total      int64
}

// CountByActivityIDs returns like totals keyed by activity. Activities without
// likes are absent from the map.
func (r *PostgresLikeRepository) CountByActivityIDs(ctx context.Context, activityIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(activityIDs))
	if len(activityIDs) == 0 {
		return counts, nil
	}

	var rows []activityTotal
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("activity_id, COUNT(*) AS total").
		Where("activity_id IN ?", activityIDs).
		Group("activity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	for _, row := range rows {
		counts[row.ActivityID] = row.Total
	}
	return counts, nil
}

// LikedActivityIDs returns which of activityIDs the user has liked.
func (r *PostgresLikeRepository) LikedActivityIDs(ctx context.Context, userID uint, activityIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(activityIDs))
	if len(activityIDs) == 0 {
		return liked, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND activity_id IN ?", userID, activityIDs).
		Pluck("activity_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load liked activities: %w", err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *PostgresLikeRepository) DeleteByActivity(ctx context.Context, activityID string) error {
	if err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("delete likes for %s: %w", activityID, err)
	}
	return nil
}
