package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByJob(ctx context.Context, jobID, userID uuid.UUID) ([]models.Task, error)
	CountOpenByJob(ctx context.Context, jobID uuid.UUID) (int64, error)
	// UpdateTransition applies a status change conditionally on the
	// status the caller read. Zero rows means a concurrent writer moved
	// the task first.
	UpdateTransition(ctx context.Context, id uuid.UUID, from models.TaskStatus, fields map[string]interface{}) (int64, error)
	ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]models.Task, error)
	// AutoComplete moves a still-submitted task to completed under a row
	// lock; it is a no-op if the task moved in the meantime.
	AutoComplete(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error)
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (r *taskRepository) ListByJob(ctx context.Context, jobID, userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("job_id = ? AND (client_id = ? OR freelancer_id = ?)", jobID, userID, userID).
			Order("created_at DESC").
			Find(&tasks).Error
	})
	return tasks, translate(err)
}

func (r *taskRepository) CountOpenByJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	var count int64
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Model(&models.Task{}).
			Where("job_id = ? AND status != ?", jobID, models.TaskStatusCompleted).
			Count(&count).Error
	})
	return count, translate(err)
}

func (r *taskRepository) UpdateTransition(ctx context.Context, id uuid.UUID, from models.TaskStatus, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return result.RowsAffected, translate(result.Error)
}

func (r *taskRepository) ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("status = ? AND submitted_at <= ?", models.TaskStatusSubmitted, cutoff).
			Find(&tasks).Error
	})
	return tasks, translate(err)
}

func (r *taskRepository) AutoComplete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&task, "id = ?", id).Error; err != nil {
			return err
		}
		if task.Status != models.TaskStatusSubmitted {
			return nil
		}
		return tx.Model(&task).Update("status", models.TaskStatusCompleted).Error
	})
	return translate(err)
}
