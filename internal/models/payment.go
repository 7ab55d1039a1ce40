package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "Initiated"
	PaymentStatusEscrowed  PaymentStatus = "Escrowed"
	PaymentStatusReleased  PaymentStatus = "Released"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

type ReleaseTrigger string

const (
	ReleaseByClient ReleaseTrigger = "client_approval"
	ReleaseByAuto   ReleaseTrigger = "auto_approval"
	ReleaseByAdmin  ReleaseTrigger = "admin_decision"
)

// Payment tracks one escrowed amount for a job. It is created when the
// client initiates checkout, becomes Escrowed once the gateway confirms,
// and is Released when the job completes.
type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;index;not null" json:"job_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_id"`

	Amount int64 `gorm:"not null" json:"amount"`

	// Khalti payment identifier and hosted checkout URL
	Pidx       string `gorm:"type:varchar(50);uniqueIndex" json:"pidx"`
	PaymentURL string `gorm:"type:text" json:"payment_url"`

	Status      PaymentStatus `gorm:"type:varchar(20);default:'Initiated';index" json:"status"`
	PaymentType PaymentType   `gorm:"type:varchar(20);default:'full_payment'" json:"payment_type"`

	MilestoneNumber *int `json:"milestone_number,omitempty"`
	TotalMilestones *int `json:"total_milestones,omitempty"`

	ReleaseTrigger ReleaseTrigger `gorm:"type:varchar(30)" json:"release_trigger,omitempty"`

	EscrowedAt *time.Time `json:"escrowed_at,omitempty"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Job *Job `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
