package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type MilestoneRepository interface {
	Create(ctx context.Context, milestone *models.Milestone) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error)
	Update(ctx context.Context, milestone *models.Milestone) error
}

type milestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) Create(ctx context.Context, milestone *models.Milestone) error {
	return translate(r.db.WithContext(ctx).Create(milestone).Error)
}

func (r *milestoneRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("job_id = ?", jobID).
			Order("created_at ASC").
			Find(&milestones).Error
	})
	return milestones, translate(err)
}

func (r *milestoneRepository) Update(ctx context.Context, milestone *models.Milestone) error {
	return translate(r.db.WithContext(ctx).Save(milestone).Error)
}
