package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	GetPublicByIDs(ctx context.Context, ids []uint) (map[uint]models.Profile, error)
	ResolveSubject(ctx context.Context, subject string, seed models.ProfileSeed) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// NormalizeHandle lowercases and trims a handle; handles are matched case-insensitively.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// GeneratedHandle returns the placeholder handle given to newly provisioned profiles.
func GeneratedHandle() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("handle = ?", NormalizeHandle(handle)).First(&profile).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &profile, nil
}

// GetPublicByIDs loads profiles in one query, keyed by ID. Unknown IDs are skipped.
func (r *PostgresProfileRepository) GetPublicByIDs(ctx context.Context, ids []uint) (map[uint]models.Profile, error) {
	result := make(map[uint]models.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	for _, p := range profiles {
		result[p.ID] = p
	}
	return result, nil
}

// ResolveSubject returns the profile linked to an identity-provider subject,
// provisioning one on first sight.
func (r *PostgresProfileRepository) ResolveSubject(ctx context.Context, subject string, seed models.ProfileSeed) (*models.Profile, error) {
	db := r.db.WithContext(ctx)

	var profile models.Profile
	err := db.Where("auth_subject = ?", subject).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup subject: %w", err)
	}

	candidate := models.Profile{
		AuthSubject: subject,
		Handle:      GeneratedHandle(),
		DisplayName: seed.DisplayName,
		AvatarURL:   seed.AvatarURL,
		Theme:       models.ThemeSystem,
	}
	err = db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "auth_subject"}}, DoNothing: true}).
		Create(&candidate).Error
	if err != nil {
		return nil, fmt.Errorf("provision profile: %w", err)
	}

	// A concurrent request may have won the insert; read back whichever row exists.
	if err := db.Where("auth_subject = ?", subject).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("reload provisioned profile: %w", err)
	}
	return &profile, nil
}

// Update saves profile edits. Returns ErrConflict if the handle is taken.
func (r *PostgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.Handle = NormalizeHandle(profile.Handle)
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
