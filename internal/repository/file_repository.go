package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.File, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	return translate(r.db.WithContext(ctx).Create(file).Error)
}

func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *fileRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("job_id = ?", jobID).
			Order("created_at DESC").
			Find(&files).Error
	})
	return files, translate(err)
}

func (r *fileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&files).Error
	})
	return files, translate(err)
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&models.File{}, "id = ?", id).Error)
}
