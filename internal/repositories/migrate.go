package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Migrate brings the relational schema and the activity indexes up to date.
func Migrate(ctx context.Context, pgdb *gorm.DB, mongoDB *mongo.Database) error {
	err := pgdb.WithContext(ctx).AutoMigrate(
		&models.Profile{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return NewMongoActivityRepository(mongoDB).EnsureIndexes(ctx)
}
