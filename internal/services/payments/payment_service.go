package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
	"github.com/rojgarhq/rojgar-backend/internal/services/khalti"
)

// Gateway is the slice of the Khalti client this service needs.
type Gateway interface {
	Initiate(req khalti.InitiateRequest) (*khalti.InitiateResponse, error)
	Lookup(pidx string) (*khalti.LookupResponse, error)
}

// Service moves money into and out of escrow. Funds enter when the
// client pays through the gateway and leave only when the job completes
// or an escrowed payment is refunded.
type Service struct {
	payments  repository.PaymentRepository
	jobs      repository.JobRepository
	proposals repository.ProposalRepository
	users     repository.UserRepository
	gateway   Gateway

	frontendURL string
	returnURL   string
}

func NewService(
	payments repository.PaymentRepository,
	jobs repository.JobRepository,
	proposals repository.ProposalRepository,
	users repository.UserRepository,
	gateway Gateway,
	frontendURL, returnURL string,
) *Service {
	return &Service{
		payments:    payments,
		jobs:        jobs,
		proposals:   proposals,
		users:       users,
		gateway:     gateway,
		frontendURL: frontendURL,
		returnURL:   returnURL,
	}
}

// Initiate starts a checkout for a job's budget. The job must be In
// Progress with an accepted proposal, and must not already hold funds.
func (s *Service) Initiate(ctx context.Context, jobID, clientID uuid.UUID) (*models.Payment, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, apperr.Forbidden("only the job owner can pay for this job")
	}
	if job.Status != models.JobStatusInProgress || job.AcceptedProposalID == nil {
		return nil, apperr.Conflict("payment requires an in-progress job with an accepted proposal")
	}

	existing, err := s.payments.FindByJob(ctx, jobID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != models.PaymentStatusRefunded {
		return nil, apperr.Conflict("a payment already exists for this job")
	}

	proposal, err := s.proposals.FindByID(ctx, *job.AcceptedProposalID)
	if err != nil {
		return nil, err
	}

	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Initiate(khalti.InitiateRequest{
		ReturnURL:         s.returnURL,
		WebsiteURL:        s.frontendURL,
		Amount:            job.Budget * 100, // rupees to paisa
		PurchaseOrderID:   jobID.String(),
		PurchaseOrderName: job.Title,
		CustomerInfo: khalti.CustomerInfo{
			Name:  client.Name,
			Email: client.Email,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	payment := &models.Payment{
		JobID:        jobID,
		ClientID:     clientID,
		FreelancerID: proposal.FreelancerID,
		Amount:       job.Budget,
		Pidx:         resp.Pidx,
		PaymentURL:   resp.PaymentURL,
		Status:       models.PaymentStatusInitiated,
		PaymentType:  job.PaymentType,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Verify settles an initiated payment by asking the gateway for the pidx
// status. It is idempotent: verifying an already-escrowed payment just
// returns it.
func (s *Service) Verify(ctx context.Context, pidx string) (*models.Payment, error) {
	payment, err := s.payments.FindByPidx(ctx, pidx)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusInitiated {
		return payment, nil
	}

	lookup, err := s.gateway.Lookup(pidx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	if lookup.Status != "Completed" {
		return nil, apperr.Conflict("payment is not completed at the gateway: " + lookup.Status)
	}

	if _, err := s.payments.MarkEscrowed(ctx, pidx); err != nil {
		return nil, err
	}
	return s.payments.FindByPidx(ctx, pidx)
}

// Refund returns escrowed funds for a job, an admin-side operation used
// when a workspace is abandoned.
func (s *Service) Refund(ctx context.Context, jobID uuid.UUID) error {
	rows, err := s.payments.Refund(ctx, jobID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("no escrowed payment to refund for this job")
	}
	return nil
}

// ListForUser returns a client's payment history.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}
