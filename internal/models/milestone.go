package models

import (
	"time"

	"github.com/google/uuid"
)

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "Pending"
	MilestoneStatusInProgress MilestoneStatus = "In_Progress"
	MilestoneStatusCompleted  MilestoneStatus = "Completed"
)

// Milestone is bookkeeping for milestone-based jobs. No lifecycle
// transition depends on it beyond payment release records.
type Milestone struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID uuid.UUID `gorm:"type:uuid;index;not null" json:"job_id"`

	Description string `gorm:"type:text;not null" json:"description"`
	Amount      int64  `gorm:"not null" json:"amount"`

	Status MilestoneStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`

	DueDate *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
