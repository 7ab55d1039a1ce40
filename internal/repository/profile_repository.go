package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Create(profile).Error)
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error
	})
	return profiles, translate(err)
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Save(profile).Error)
}
