package models

import (
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "Pending"
	ProposalStatusAccepted ProposalStatus = "Accepted"
	ProposalStatusRejected ProposalStatus = "Rejected"
)

// Proposal is a freelancer's bid against a job. A (job, freelancer) pair
// carries at most one proposal; a job carries at most one Accepted proposal.
type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;index:idx_proposals_job_freelancer,unique;not null" json:"job_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index:idx_proposals_job_freelancer,unique;not null" json:"freelancer_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	CoverLetter string `gorm:"type:text;not null" json:"cover_letter"`
	BidAmount   int64  `gorm:"not null" json:"bid_amount"`

	Status ProposalStatus `gorm:"type:varchar(20);default:'Pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Client     *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
