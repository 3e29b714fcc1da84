package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	CountByActivityIDs(ctx context.Context, activityIDs []string) (map[string]int64, error)
	DeleteByActivity(ctx context.Context, activityID string) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *PostgresCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &comment, nil
}

// ListByActivity returns an activity's comments, oldest first.
func (r *PostgresCommentRepository) ListByActivity(ctx context.Context, activityID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (r *PostgresCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(comment).Updates(map[string]interface{}{"text": comment.Text})
	if res.Error != nil {
		return fmt.Errorf("update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCommentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByActivityIDs returns comment totals keyed by activity. Activities
// without comments are absent from the map.
func (r *PostgresCommentRepository) CountByActivityIDs(ctx context.Context, activityIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(activityIDs))
	if len(activityIDs) == 0 {
		return counts, nil
	}

	var rows []activityTotal
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("activity_id, COUNT(*) AS total").
		Where("activity_id IN ?", activityIDs).
		Group("activity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	for _, row := range rows {
		counts[row.ActivityID] = row.Total
	}
	return counts, nil
}

func (r *PostgresCommentRepository) DeleteByActivity(ctx context.Context, activityID string) error {
	if err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments for %s: %w", activityID, err)
	}
	return nil
}
