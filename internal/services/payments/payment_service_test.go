package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/services/khalti"
)

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepo) FindByPidx(ctx context.Context, pidx string) (*models.Payment, error) {
	args := m.Called(ctx, pidx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) MarkEscrowed(ctx context.Context, pidx string) (int64, error) {
	args := m.Called(ctx, pidx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPaymentRepo) Refund(ctx context.Context, jobID uuid.UUID) (int64, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Payment), args.Error(1)
}

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

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Initiate(req khalti.InitiateRequest) (*khalti.InitiateResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*khalti.InitiateResponse), args.Error(1)
}

func (m *mockGateway) Lookup(pidx string) (*khalti.LookupResponse, error) {
	args := m.Called(pidx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*khalti.LookupResponse), args.Error(1)
}

func newService(payments *mockPaymentRepo, jobs *mockJobRepo, proposals *mockProposalRepo, users *mockUserRepo, gateway *mockGateway) *Service {
	return NewService(payments, jobs, proposals, users, gateway,
		"http://localhost:3000", "http://localhost:3000/payments/verify")
}

func TestInitiate(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	jobID := uuid.New()
	proposalID := uuid.New()

	job := func() *models.Job {
		return &models.Job{
			ID:                 jobID,
			ClientID:           clientID,
			Title:              "Landing page",
			Budget:             20000,
			PaymentType:        models.PaymentTypeFull,
			Status:             models.JobStatusInProgress,
			AcceptedProposalID: &proposalID,
		}
	}

	t.Run("creates initiated payment with gateway session", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		jobRepo := new(mockJobRepo)
		propRepo := new(mockProposalRepo)
		userRepo := new(mockUserRepo)
		gateway := new(mockGateway)

		jobRepo.On("FindByID", mock.Anything, jobID).Return(job(), nil)
		payRepo.On("FindByJob", mock.Anything, jobID).Return(nil, apperr.ErrNotFound)
		propRepo.On("FindByID", mock.Anything, proposalID).
			Return(&models.Proposal{ID: proposalID, FreelancerID: freelancerID}, nil)
		userRepo.On("FindByID", mock.Anything, clientID).
			Return(&models.User{ID: clientID, Name: "Client", Email: "client@example.com"}, nil)
		gateway.On("Initiate", mock.MatchedBy(func(req khalti.InitiateRequest) bool {
			return req.Amount == 2000000 && req.PurchaseOrderID == jobID.String()
		})).Return(&khalti.InitiateResponse{Pidx: "pidx-1", PaymentURL: "https://pay"}, nil)
		payRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(nil)

		svc := newService(payRepo, jobRepo, propRepo, userRepo, gateway)
		payment, err := svc.Initiate(context.Background(), jobID, clientID)

		assert.NoError(t, err)
		assert.Equal(t, models.PaymentStatusInitiated, payment.Status)
		assert.Equal(t, "pidx-1", payment.Pidx)
		assert.Equal(t, freelancerID, payment.FreelancerID)
		gateway.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		jobRepo := new(mockJobRepo)
		jobRepo.On("FindByID", mock.Anything, jobID).Return(job(), nil)

		svc := newService(new(mockPaymentRepo), jobRepo, new(mockProposalRepo), new(mockUserRepo), new(mockGateway))
		_, err := svc.Initiate(context.Background(), jobID, uuid.New())
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("requires an in-progress job", func(t *testing.T) {
		jobRepo := new(mockJobRepo)
		j := job()
		j.Status = models.JobStatusOpen
		j.AcceptedProposalID = nil
		jobRepo.On("FindByID", mock.Anything, jobID).Return(j, nil)

		svc := newService(new(mockPaymentRepo), jobRepo, new(mockProposalRepo), new(mockUserRepo), new(mockGateway))
		_, err := svc.Initiate(context.Background(), jobID, clientID)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("existing payment blocks a second one", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		jobRepo := new(mockJobRepo)
		jobRepo.On("FindByID", mock.Anything, jobID).Return(job(), nil)
		payRepo.On("FindByJob", mock.Anything, jobID).
			Return(&models.Payment{Status: models.PaymentStatusEscrowed}, nil)

		svc := newService(payRepo, jobRepo, new(mockProposalRepo), new(mockUserRepo), new(mockGateway))
		_, err := svc.Initiate(context.Background(), jobID, clientID)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("gateway failure is unavailable", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		jobRepo := new(mockJobRepo)
		propRepo := new(mockProposalRepo)
		userRepo := new(mockUserRepo)
		gateway := new(mockGateway)

		jobRepo.On("FindByID", mock.Anything, jobID).Return(job(), nil)
		payRepo.On("FindByJob", mock.Anything, jobID).Return(nil, apperr.ErrNotFound)
		propRepo.On("FindByID", mock.Anything, proposalID).
			Return(&models.Proposal{ID: proposalID, FreelancerID: freelancerID}, nil)
		userRepo.On("FindByID", mock.Anything, clientID).
			Return(&models.User{ID: clientID}, nil)
		gateway.On("Initiate", mock.Anything).Return(nil, assert.AnError)

		svc := newService(payRepo, jobRepo, propRepo, userRepo, gateway)
		_, err := svc.Initiate(context.Background(), jobID, clientID)
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	})
}

func TestVerify(t *testing.T) {
	pidx := "pidx-1"

	t.Run("marks completed payment as escrowed", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		gateway := new(mockGateway)

		payRepo.On("FindByPidx", mock.Anything, pidx).
			Return(&models.Payment{Pidx: pidx, Status: models.PaymentStatusInitiated}, nil).Once()
		gateway.On("Lookup", pidx).Return(&khalti.LookupResponse{Status: "Completed"}, nil)
		payRepo.On("MarkEscrowed", mock.Anything, pidx).Return(int64(1), nil)

		now := time.Now()
		payRepo.On("FindByPidx", mock.Anything, pidx).
			Return(&models.Payment{Pidx: pidx, Status: models.PaymentStatusEscrowed, EscrowedAt: &now}, nil).Once()

		svc := newService(payRepo, new(mockJobRepo), new(mockProposalRepo), new(mockUserRepo), gateway)
		payment, err := svc.Verify(context.Background(), pidx)

		assert.NoError(t, err)
		assert.Equal(t, models.PaymentStatusEscrowed, payment.Status)
	})

	t.Run("verification is idempotent", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		gateway := new(mockGateway)
		payRepo.On("FindByPidx", mock.Anything, pidx).
			Return(&models.Payment{Pidx: pidx, Status: models.PaymentStatusEscrowed}, nil)

		svc := newService(payRepo, new(mockJobRepo), new(mockProposalRepo), new(mockUserRepo), gateway)
		payment, err := svc.Verify(context.Background(), pidx)

		assert.NoError(t, err)
		assert.Equal(t, models.PaymentStatusEscrowed, payment.Status)
		gateway.AssertNotCalled(t, "Lookup", mock.Anything)
	})

	t.Run("pending gateway status is a conflict", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		gateway := new(mockGateway)
		payRepo.On("FindByPidx", mock.Anything, pidx).
			Return(&models.Payment{Pidx: pidx, Status: models.PaymentStatusInitiated}, nil)
		gateway.On("Lookup", pidx).Return(&khalti.LookupResponse{Status: "Pending"}, nil)

		svc := newService(payRepo, new(mockJobRepo), new(mockProposalRepo), new(mockUserRepo), gateway)
		_, err := svc.Verify(context.Background(), pidx)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestRefund(t *testing.T) {
	jobID := uuid.New()

	t.Run("refunds escrowed payment", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		payRepo.On("Refund", mock.Anything, jobID).Return(int64(1), nil)

		svc := newService(payRepo, new(mockJobRepo), new(mockProposalRepo), new(mockUserRepo), new(mockGateway))
		assert.NoError(t, svc.Refund(context.Background(), jobID))
	})

	t.Run("nothing to refund is a conflict", func(t *testing.T) {
		payRepo := new(mockPaymentRepo)
		payRepo.On("Refund", mock.Anything, jobID).Return(int64(0), nil)

		svc := newService(payRepo, new(mockJobRepo), new(mockProposalRepo), new(mockUserRepo), new(mockGateway))
		err := svc.Refund(context.Background(), jobID)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}
