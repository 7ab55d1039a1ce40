package proposals

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
)

// Service arbitrates proposals for a job: any number may be submitted
// while the job is Open, at most one is ever Accepted.
type Service struct {
	jobs      repository.JobRepository
	proposals repository.ProposalRepository
}

func NewService(jobs repository.JobRepository, proposals repository.ProposalRepository) *Service {
	return &Service{jobs: jobs, proposals: proposals}
}

// Submit files a freelancer's bid against an Open job. A freelancer gets
// one proposal per job.
func (s *Service) Submit(ctx context.Context, jobID, freelancerID uuid.UUID, coverLetter string, bidAmount int64) (*models.Proposal, error) {
	if strings.TrimSpace(coverLetter) == "" {
		return nil, apperr.Validation("cover letter is required")
	}
	if bidAmount <= 0 {
		return nil, apperr.Validation("bid amount must be positive")
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperr.Conflict("job is no longer accepting proposals")
	}
	if job.ClientID == freelancerID {
		return nil, apperr.Forbidden("cannot submit a proposal to your own job")
	}

	existing, err := s.proposals.FindByJobAndFreelancer(ctx, jobID, freelancerID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("you have already submitted a proposal for this job")
	}

	proposal := &models.Proposal{
		JobID:        jobID,
		FreelancerID: freelancerID,
		ClientID:     job.ClientID,
		CoverLetter:  coverLetter,
		BidAmount:    bidAmount,
		Status:       models.ProposalStatusPending,
	}
	if err := s.proposals.Create(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// Decide applies the job owner's accept/reject verdict on a pending
// proposal. Accepting is exclusive: it moves the job to In Progress and
// rejects every other pending proposal in the same transaction, so two
// racing accepts can never both win.
func (s *Service) Decide(ctx context.Context, proposalID, clientID uuid.UUID, action string) (*models.Proposal, error) {
	if action != "accept" && action != "reject" {
		return nil, apperr.Validation("action must be accept or reject")
	}

	proposal, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientID != clientID {
		return nil, apperr.Forbidden("only the job owner can decide on this proposal")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperr.Conflict("proposal has already been decided")
	}

	if action == "accept" {
		job, err := s.jobs.FindByID(ctx, proposal.JobID)
		if err != nil {
			return nil, err
		}
		if job.Status != models.JobStatusOpen {
			return nil, apperr.Conflict("job is no longer open")
		}
		if err := s.proposals.AcceptExclusive(ctx, proposalID, proposal.JobID); err != nil {
			return nil, err
		}
	} else {
		rows, err := s.proposals.Reject(ctx, proposalID)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, apperr.Conflict("proposal has already been decided")
		}
	}

	return s.proposals.FindByID(ctx, proposalID)
}

// Get returns a proposal visible to one of its parties.
func (s *Service) Get(ctx context.Context, proposalID, userID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientID != userID && proposal.FreelancerID != userID {
		return nil, apperr.Forbidden("you are not a party to this proposal")
	}
	return proposal, nil
}

func (s *Service) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error) {
	return s.proposals.ListByClient(ctx, clientID)
}

func (s *Service) ListForFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	return s.proposals.ListByFreelancer(ctx, freelancerID)
}

// ListAccepted returns the user's active workspaces, on either side of
// the table.
func (s *Service) ListAccepted(ctx context.Context, userID uuid.UUID, role models.Role) ([]models.Proposal, error) {
	return s.proposals.ListAccepted(ctx, userID, role)
}
