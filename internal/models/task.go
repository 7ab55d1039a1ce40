package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending        TaskStatus = "pending"
	TaskStatusInProgress     TaskStatus = "in_progress"
	TaskStatusSubmitted      TaskStatus = "submitted"
	TaskStatusUnderReview    TaskStatus = "under_review"
	TaskStatusRevisionNeeded TaskStatus = "revision_needed"
	TaskStatusCompleted      TaskStatus = "completed"
)

type Task struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID      uuid.UUID `gorm:"type:uuid;index;not null" json:"job_id"`
	ProposalID uuid.UUID `gorm:"type:uuid;index;not null" json:"proposal_id"`

	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	Status TaskStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	Deadline time.Time `gorm:"not null" json:"deadline"`

	// set on each submit; drives the auto-approval worker
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	// present only while the task is in revision_needed
	RevisionReason string `gorm:"type:text" json:"revision_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Job      *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Proposal *Proposal `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
}
