package tasks

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
)

// edge names one permitted status change and which side of the contract
// may perform it.
type edge struct {
	to    models.TaskStatus
	actor models.Role
}

// transitions is the full task state machine. Anything not listed here
// is rejected as an invalid transition regardless of who asks.
var transitions = map[models.TaskStatus][]edge{
	models.TaskStatusPending: {
		{to: models.TaskStatusInProgress, actor: models.RoleFreelancer},
	},
	models.TaskStatusInProgress: {
		{to: models.TaskStatusSubmitted, actor: models.RoleFreelancer},
	},
	models.TaskStatusSubmitted: {
		{to: models.TaskStatusUnderReview, actor: models.RoleClient},
	},
	models.TaskStatusUnderReview: {
		{to: models.TaskStatusCompleted, actor: models.RoleClient},
		{to: models.TaskStatusRevisionNeeded, actor: models.RoleClient},
	},
	models.TaskStatusRevisionNeeded: {
		{to: models.TaskStatusSubmitted, actor: models.RoleFreelancer},
	},
}

// Service manages per-job tasks inside an accepted proposal's workspace.
type Service struct {
	tasks     repository.TaskRepository
	proposals repository.ProposalRepository
}

func NewService(tasks repository.TaskRepository, proposals repository.ProposalRepository) *Service {
	return &Service{tasks: tasks, proposals: proposals}
}

type CreateInput struct {
	ProposalID  uuid.UUID
	Title       string
	Description string
	Deadline    time.Time
}

// Create adds a task to an accepted proposal's workspace. Only the
// client who owns the job can create tasks.
func (s *Service) Create(ctx context.Context, clientID uuid.UUID, in CreateInput) (*models.Task, error) {
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) < 3 {
		return nil, apperr.Validation("title must be at least 3 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < 10 {
		return nil, apperr.Validation("description must be at least 10 characters")
	}
	if in.Deadline.IsZero() {
		return nil, apperr.Validation("deadline is required")
	}

	proposal, err := s.proposals.FindByID(ctx, in.ProposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientID != clientID {
		return nil, apperr.Forbidden("only the job owner can create tasks")
	}
	if proposal.Status != models.ProposalStatusAccepted {
		return nil, apperr.Conflict("tasks require an accepted proposal")
	}

	task := &models.Task{
		JobID:        proposal.JobID,
		ProposalID:   proposal.ID,
		ClientID:     proposal.ClientID,
		FreelancerID: proposal.FreelancerID,
		Title:        in.Title,
		Description:  in.Description,
		Deadline:     in.Deadline,
		Status:       models.TaskStatusPending,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListByJob returns a job's tasks for one of the workspace parties.
func (s *Service) ListByJob(ctx context.Context, jobID, userID uuid.UUID) ([]models.Task, error) {
	return s.tasks.ListByJob(ctx, jobID, userID)
}

// Transition moves a task along the state machine. The revision reason
// is mandatory when sending work back and cleared on resubmission.
func (s *Service) Transition(ctx context.Context, taskID, actorID uuid.UUID, to models.TaskStatus, reason string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var actorRole models.Role
	switch actorID {
	case task.ClientID:
		actorRole = models.RoleClient
	case task.FreelancerID:
		actorRole = models.RoleFreelancer
	default:
		return nil, apperr.Forbidden("you are not a party to this task")
	}

	var allowed *edge
	for i, e := range transitions[task.Status] {
		if e.to == to {
			allowed = &transitions[task.Status][i]
			break
		}
	}
	if allowed == nil {
		return nil, apperr.InvalidTransition(string(task.Status) + " -> " + string(to))
	}
	if allowed.actor != actorRole {
		return nil, apperr.Forbidden("this transition belongs to the other party")
	}

	fields := map[string]interface{}{"status": to}
	switch to {
	case models.TaskStatusSubmitted:
		fields["submitted_at"] = time.Now()
		fields["revision_reason"] = ""
	case models.TaskStatusRevisionNeeded:
		if strings.TrimSpace(reason) == "" {
			return nil, apperr.Validation("revision reason is required")
		}
		fields["revision_reason"] = reason
	}

	rows, err := s.tasks.UpdateTransition(ctx, taskID, task.Status, fields)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.Conflict("task was updated concurrently")
	}
	return s.tasks.FindByID(ctx, taskID)
}
