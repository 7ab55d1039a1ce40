package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "Open"
	JobStatusInProgress JobStatus = "In Progress"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusCancelled  JobStatus = "Cancelled"
)

type PaymentType string

const (
	PaymentTypeFull      PaymentType = "full_payment"
	PaymentTypeMilestone PaymentType = "milestone"
)

type Job struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	Budget      int64       `gorm:"not null" json:"budget"`
	PaymentType PaymentType `gorm:"type:varchar(20);not null" json:"payment_type"`

	Status JobStatus `gorm:"type:varchar(20);default:'Open';index" json:"status"`

	// set exactly when a proposal is accepted, never while Open
	AcceptedProposalID *uuid.UUID `gorm:"type:uuid" json:"accepted_proposal_id,omitempty"`

	Tags datatypes.JSON `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Client    *User      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Proposals []Proposal `gorm:"foreignKey:JobID" json:"proposals,omitempty"`
}
