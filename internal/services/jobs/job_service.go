package jobs

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
)

// Service owns the job lifecycle: Open -> In Progress -> Completed, with
// Cancelled reachable only from Open.
type Service struct {
	jobs       repository.JobRepository
	tasks      repository.TaskRepository
	milestones repository.MilestoneRepository
}

func NewService(jobs repository.JobRepository, tasks repository.TaskRepository, milestones repository.MilestoneRepository) *Service {
	return &Service{jobs: jobs, tasks: tasks, milestones: milestones}
}

type MilestoneInput struct {
	Description string
	Amount      int64
}

type CreateInput struct {
	Title       string
	Description string
	Budget      int64
	PaymentType models.PaymentType
	Tags        []string
	Milestones  []MilestoneInput
}

func (s *Service) Create(ctx context.Context, clientID uuid.UUID, in CreateInput) (*models.Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description is required")
	}
	if in.Budget <= 0 {
		return nil, apperr.Validation("budget must be positive")
	}
	if in.PaymentType != models.PaymentTypeFull && in.PaymentType != models.PaymentTypeMilestone {
		return nil, apperr.Validation("payment type must be full_payment or milestone")
	}
	if in.PaymentType == models.PaymentTypeMilestone {
		if len(in.Milestones) == 0 {
			return nil, apperr.Validation("milestone jobs need at least one milestone")
		}
		var total int64
		for _, m := range in.Milestones {
			if strings.TrimSpace(m.Description) == "" || m.Amount <= 0 {
				return nil, apperr.Validation("each milestone needs a description and a positive amount")
			}
			total += m.Amount
		}
		if total != in.Budget {
			return nil, apperr.Validation("milestone amounts must add up to the budget")
		}
	}

	job := &models.Job{
		ClientID:    clientID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		PaymentType: in.PaymentType,
		Status:      models.JobStatusOpen,
	}
	if len(in.Tags) > 0 {
		tags, err := tagsJSON(in.Tags)
		if err != nil {
			return nil, err
		}
		job.Tags = tags
	}
	if in.PaymentType == models.PaymentTypeMilestone {
		schedule := make([]models.Milestone, 0, len(in.Milestones))
		for _, m := range in.Milestones {
			schedule = append(schedule, models.Milestone{
				Description: m.Description,
				Amount:      m.Amount,
				Status:      models.MilestoneStatusPending,
			})
		}
		if err := s.jobs.CreateWithSchedule(ctx, job, schedule); err != nil {
			return nil, err
		}
		return job, nil
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ListMilestones returns a milestone job's payment schedule.
func (s *Service) ListMilestones(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error) {
	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.milestones.ListByJob(ctx, jobID)
}

// ListForClient returns the client's jobs partitioned by lifecycle stage,
// the shape the client dashboard renders directly.
func (s *Service) ListForClient(ctx context.Context, clientID uuid.UUID) (map[string][]models.Job, error) {
	all, err := s.jobs.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	grouped := map[string][]models.Job{
		"open":        {},
		"in_progress": {},
		"completed":   {},
	}
	for _, job := range all {
		switch job.Status {
		case models.JobStatusOpen:
			grouped["open"] = append(grouped["open"], job)
		case models.JobStatusInProgress:
			grouped["in_progress"] = append(grouped["in_progress"], job)
		case models.JobStatusCompleted:
			grouped["completed"] = append(grouped["completed"], job)
		}
	}
	return grouped, nil
}

// ListOpen returns the public board of jobs still accepting proposals.
func (s *Service) ListOpen(ctx context.Context) ([]models.Job, error) {
	return s.jobs.ListOpen(ctx)
}

func (s *Service) Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return s.jobs.FindByID(ctx, jobID)
}

// Cancel withdraws an Open job. Once a proposal has been accepted the
// job can no longer be cancelled.
func (s *Service) Cancel(ctx context.Context, jobID, clientID uuid.UUID) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return apperr.Forbidden("only the job owner can cancel this job")
	}
	rows, err := s.jobs.Cancel(ctx, jobID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("only open jobs can be cancelled")
	}
	return nil
}

// Complete is the client's final sign-off. It requires every task on the
// job to be completed and releases the escrowed payment together with
// the status flip.
func (s *Service) Complete(ctx context.Context, jobID, clientID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, apperr.Forbidden("only the job owner can complete this job")
	}
	if job.Status != models.JobStatusInProgress {
		return nil, apperr.Conflict("only in-progress jobs can be completed")
	}

	open, err := s.tasks.CountOpenByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, apperr.Conflict("all tasks must be completed first")
	}

	rows, err := s.jobs.CompleteAndRelease(ctx, jobID, models.ReleaseByClient)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.Conflict("job is no longer in progress")
	}
	return s.jobs.FindByID(ctx, jobID)
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, apperr.Validation("invalid tags")
	}
	return datatypes.JSON(raw), nil
}
