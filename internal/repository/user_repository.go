package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&user, "google_id = ?", googleID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return translate(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error)
}
