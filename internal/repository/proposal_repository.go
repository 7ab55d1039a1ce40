package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type ProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error)
	ListAccepted(ctx context.Context, userID uuid.UUID, role models.Role) ([]models.Proposal, error)
	// AcceptExclusive is the arbitration write: in one transaction it
	// flips the winning proposal Pending -> Accepted, the job
	// Open -> In Progress with the accepted proposal id, and every other
	// Pending sibling to Rejected. A lost race on either conditional
	// update surfaces as Conflict.
	AcceptExclusive(ctx context.Context, proposalID, jobID uuid.UUID) error
	// Reject flips Pending -> Rejected. Zero rows means the proposal was
	// no longer Pending.
	Reject(ctx context.Context, proposalID uuid.UUID) (int64, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Preload("Job").
			Preload("Freelancer").
			Preload("Client").
			First(&p, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *proposalRepository) FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("job_id = ? AND freelancer_id = ?", jobID, freelancerID).
			First(&p).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *proposalRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Preload("Freelancer").
			Preload("Job").
			Where("client_id = ?", clientID).
			Order("created_at DESC").
			Find(&proposals).Error
	})
	return proposals, translate(err)
}

func (r *proposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Preload("Job").
			Where("freelancer_id = ?", freelancerID).
			Order("created_at DESC").
			Find(&proposals).Error
	})
	return proposals, translate(err)
}

func (r *proposalRepository) ListAccepted(ctx context.Context, userID uuid.UUID, role models.Role) ([]models.Proposal, error) {
	q := r.db.WithContext(ctx).
		Preload("Freelancer").
		Preload("Job").
		Where("status = ?", models.ProposalStatusAccepted)

	if role == models.RoleClient {
		q = q.Where("client_id = ?", userID)
	} else {
		q = q.Where("freelancer_id = ?", userID)
	}

	var proposals []models.Proposal
	err := withRetry(func() error { return q.Find(&proposals).Error })
	return proposals, translate(err)
}

func (r *proposalRepository) AcceptExclusive(ctx context.Context, proposalID, jobID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposalID, models.ProposalStatusPending).
			Update("status", models.ProposalStatusAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.ErrConflict
		}

		result = tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", jobID, models.JobStatusOpen).
			Updates(map[string]interface{}{
				"status":               models.JobStatusInProgress,
				"accepted_proposal_id": proposalID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// someone else won the job between our reads and this write
			return apperr.ErrConflict
		}

		return tx.Model(&models.Proposal{}).
			Where("job_id = ? AND id != ? AND status = ?", jobID, proposalID, models.ProposalStatusPending).
			Update("status", models.ProposalStatusRejected).Error
	})
	return translate(err)
}

func (r *proposalRepository) Reject(ctx context.Context, proposalID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalID, models.ProposalStatusPending).
		Update("status", models.ProposalStatusRejected)
	return result.RowsAffected, translate(result.Error)
}
