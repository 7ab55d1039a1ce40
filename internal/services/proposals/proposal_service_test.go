package proposals

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type mockJobRepo struct{ mock.Mock }

func (m *mockJobRepo) Create(ctx context.Context, job *models.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobRepo) CreateWithSchedule(ctx context.Context, job *models.Job, milestones []models.Milestone) error {
	return m.Called(ctx, job, milestones).Error(0)
}

func (m *mockJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockJobRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobRepo) ListOpen(ctx context.Context) ([]models.Job, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobRepo) Cancel(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJobRepo) CompleteAndRelease(ctx context.Context, id uuid.UUID, trigger models.ReleaseTrigger) (int64, error) {
	args := m.Called(ctx, id, trigger)
	return args.Get(0).(int64), args.Error(1)
}

type mockProposalRepo struct{ mock.Mock }

func (m *mockProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProposalRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, jobID, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListAccepted(ctx context.Context, userID uuid.UUID, role models.Role) ([]models.Proposal, error) {
	args := m.Called(ctx, userID, role)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) AcceptExclusive(ctx context.Context, proposalID, jobID uuid.UUID) error {
	return m.Called(ctx, proposalID, jobID).Error(0)
}

func (m *mockProposalRepo) Reject(ctx context.Context, proposalID uuid.UUID) (int64, error) {
	args := m.Called(ctx, proposalID)
	return args.Get(0).(int64), args.Error(1)
}

func TestSubmit(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()

	openJob := func() *models.Job {
		return &models.Job{ID: jobID, ClientID: clientID, Status: models.JobStatusOpen}
	}

	t.Run("creates pending proposal against open job", func(t *testing.T) {
		jobs := new(mockJobRepo)
		props := new(mockProposalRepo)
		jobs.On("FindByID", mock.Anything, jobID).Return(openJob(), nil)
		props.On("FindByJobAndFreelancer", mock.Anything, jobID, freelancerID).Return(nil, apperr.ErrNotFound)
		props.On("Create", mock.Anything, mock.AnythingOfType("*models.Proposal")).Return(nil)

		svc := NewService(jobs, props)
		p, err := svc.Submit(context.Background(), jobID, freelancerID, "I can do this", 5000)

		assert.NoError(t, err)
		assert.Equal(t, models.ProposalStatusPending, p.Status)
		assert.Equal(t, clientID, p.ClientID)
		props.AssertExpectations(t)
	})

	t.Run("rejects empty cover letter", func(t *testing.T) {
		svc := NewService(new(mockJobRepo), new(mockProposalRepo))
		_, err := svc.Submit(context.Background(), jobID, freelancerID, "  ", 5000)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("rejects non-positive bid", func(t *testing.T) {
		svc := NewService(new(mockJobRepo), new(mockProposalRepo))
		_, err := svc.Submit(context.Background(), jobID, freelancerID, "hello", 0)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("conflict when job is not open", func(t *testing.T) {
		jobs := new(mockJobRepo)
		job := openJob()
		job.Status = models.JobStatusInProgress
		jobs.On("FindByID", mock.Anything, jobID).Return(job, nil)

		svc := NewService(jobs, new(mockProposalRepo))
		_, err := svc.Submit(context.Background(), jobID, freelancerID, "hello", 5000)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("forbidden on own job", func(t *testing.T) {
		jobs := new(mockJobRepo)
		jobs.On("FindByID", mock.Anything, jobID).Return(openJob(), nil)

		svc := NewService(jobs, new(mockProposalRepo))
		_, err := svc.Submit(context.Background(), jobID, clientID, "hello", 5000)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("conflict on duplicate proposal", func(t *testing.T) {
		jobs := new(mockJobRepo)
		props := new(mockProposalRepo)
		jobs.On("FindByID", mock.Anything, jobID).Return(openJob(), nil)
		props.On("FindByJobAndFreelancer", mock.Anything, jobID, freelancerID).
			Return(&models.Proposal{ID: uuid.New()}, nil)

		svc := NewService(jobs, props)
		_, err := svc.Submit(context.Background(), jobID, freelancerID, "hello", 5000)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("not found when job does not exist", func(t *testing.T) {
		jobs := new(mockJobRepo)
		jobs.On("FindByID", mock.Anything, jobID).Return(nil, apperr.ErrNotFound)

		svc := NewService(jobs, new(mockProposalRepo))
		_, err := svc.Submit(context.Background(), jobID, freelancerID, "hello", 5000)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDecide(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()
	proposalID := uuid.New()

	pending := func() *models.Proposal {
		return &models.Proposal{
			ID:           proposalID,
			JobID:        jobID,
			ClientID:     clientID,
			FreelancerID: freelancerID,
			Status:       models.ProposalStatusPending,
		}
	}

	t.Run("accept wins exclusively", func(t *testing.T) {
		jobs := new(mockJobRepo)
		props := new(mockProposalRepo)
		props.On("FindByID", mock.Anything, proposalID).Return(pending(), nil).Once()
		jobs.On("FindByID", mock.Anything, jobID).
			Return(&models.Job{ID: jobID, ClientID: clientID, Status: models.JobStatusOpen}, nil)
		props.On("AcceptExclusive", mock.Anything, proposalID, jobID).Return(nil)

		accepted := pending()
		accepted.Status = models.ProposalStatusAccepted
		props.On("FindByID", mock.Anything, proposalID).Return(accepted, nil).Once()

		svc := NewService(jobs, props)
		p, err := svc.Decide(context.Background(), proposalID, clientID, "accept")

		assert.NoError(t, err)
		assert.Equal(t, models.ProposalStatusAccepted, p.Status)
		props.AssertExpectations(t)
	})

	t.Run("accept surfaces lost race as conflict", func(t *testing.T) {
		jobs := new(mockJobRepo)
		props := new(mockProposalRepo)
		props.On("FindByID", mock.Anything, proposalID).Return(pending(), nil)
		jobs.On("FindByID", mock.Anything, jobID).
			Return(&models.Job{ID: jobID, ClientID: clientID, Status: models.JobStatusOpen}, nil)
		props.On("AcceptExclusive", mock.Anything, proposalID, jobID).Return(apperr.ErrConflict)

		svc := NewService(jobs, props)
		_, err := svc.Decide(context.Background(), proposalID, clientID, "accept")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("only the owner decides", func(t *testing.T) {
		props := new(mockProposalRepo)
		props.On("FindByID", mock.Anything, proposalID).Return(pending(), nil)

		svc := NewService(new(mockJobRepo), props)
		_, err := svc.Decide(context.Background(), proposalID, uuid.New(), "accept")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("already decided is a conflict", func(t *testing.T) {
		props := new(mockProposalRepo)
		decided := pending()
		decided.Status = models.ProposalStatusRejected
		props.On("FindByID", mock.Anything, proposalID).Return(decided, nil)

		svc := NewService(new(mockJobRepo), props)
		_, err := svc.Decide(context.Background(), proposalID, clientID, "accept")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("accept on a non-open job is a conflict", func(t *testing.T) {
		jobs := new(mockJobRepo)
		props := new(mockProposalRepo)
		props.On("FindByID", mock.Anything, proposalID).Return(pending(), nil)
		jobs.On("FindByID", mock.Anything, jobID).
			Return(&models.Job{ID: jobID, ClientID: clientID, Status: models.JobStatusInProgress}, nil)

		svc := NewService(jobs, props)
		_, err := svc.Decide(context.Background(), proposalID, clientID, "accept")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("reject flips pending to rejected", func(t *testing.T) {
		props := new(mockProposalRepo)
		props.On("FindByID", mock.Anything, proposalID).Return(pending(), nil).Once()
		props.On("Reject", mock.Anything, proposalID).Return(int64(1), nil)

		rejected := pending()
		rejected.Status = models.ProposalStatusRejected
		props.On("FindByID", mock.Anything, proposalID).Return(rejected, nil).Once()

		svc := NewService(new(mockJobRepo), props)
		p, err := svc.Decide(context.Background(), proposalID, clientID, "reject")

		assert.NoError(t, err)
		assert.Equal(t, models.ProposalStatusRejected, p.Status)
	})

	t.Run("reject losing the race is a conflict", func(t *testing.T) {
		props := new(mockProposalRepo)
		props.On("FindByID", mock.Anything, proposalID).Return(pending(), nil)
		props.On("Reject", mock.Anything, proposalID).Return(int64(0), nil)

		svc := NewService(new(mockJobRepo), props)
		_, err := svc.Decide(context.Background(), proposalID, clientID, "reject")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("unknown action is a validation error", func(t *testing.T) {
		svc := NewService(new(mockJobRepo), new(mockProposalRepo))
		_, err := svc.Decide(context.Background(), proposalID, clientID, "maybe")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestGetVisibility(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	proposalID := uuid.New()

	props := new(mockProposalRepo)
	props.On("FindByID", mock.Anything, proposalID).Return(&models.Proposal{
		ID:           proposalID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
	}, nil)

	svc := NewService(new(mockJobRepo), props)

	_, err := svc.Get(context.Background(), proposalID, clientID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), proposalID, freelancerID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), proposalID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
