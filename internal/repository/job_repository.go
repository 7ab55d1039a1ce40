package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

// JobRepository is the store surface for jobs. Status flips are
// conditional updates so concurrent writers cannot double-apply them.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	// CreateWithSchedule writes a job and its milestone schedule in one
	// transaction so a milestone job can never persist with a partial
	// schedule.
	CreateWithSchedule(ctx context.Context, job *models.Job, milestones []models.Milestone) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error)
	ListOpen(ctx context.Context) ([]models.Job, error)
	// Cancel flips Open -> Cancelled. Zero rows means the job was no
	// longer Open.
	Cancel(ctx context.Context, id uuid.UUID) (int64, error)
	// CompleteAndRelease flips In Progress -> Completed and releases the
	// job's escrowed payment in one transaction. Zero rows means the job
	// was not In Progress.
	CompleteAndRelease(ctx context.Context, id uuid.UUID, trigger models.ReleaseTrigger) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	return translate(r.db.WithContext(ctx).Create(job).Error)
}

func (r *jobRepository) CreateWithSchedule(ctx context.Context, job *models.Job, milestones []models.Milestone) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		for i := range milestones {
			milestones[i].JobID = job.ID
			if err := tx.Create(&milestones[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *jobRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("client_id = ?", clientID).
			Order("created_at DESC").
			Find(&jobs).Error
	})
	return jobs, translate(err)
}

func (r *jobRepository) ListOpen(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Preload("Client").
			Where("status = ?", models.JobStatusOpen).
			Order("created_at DESC").
			Find(&jobs).Error
	})
	return jobs, translate(err)
}

func (r *jobRepository) Cancel(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusOpen).
		Update("status", models.JobStatusCancelled)
	return result.RowsAffected, translate(result.Error)
}

func (r *jobRepository) CompleteAndRelease(ctx context.Context, id uuid.UUID, trigger models.ReleaseTrigger) (int64, error) {
	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", id, models.JobStatusInProgress).
			Update("status", models.JobStatusCompleted)
		if result.Error != nil {
			return result.Error
		}
		rows = result.RowsAffected
		if rows == 0 {
			return nil
		}

		now := time.Now()
		return tx.Model(&models.Payment{}).
			Where("job_id = ? AND status = ?", id, models.PaymentStatusEscrowed).
			Updates(map[string]interface{}{
				"status":          models.PaymentStatusReleased,
				"release_trigger": trigger,
				"released_at":     now,
			}).Error
	})
	return rows, translate(err)
}
