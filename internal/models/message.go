package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Message is one chat line between the two parties of a proposal.
// Messages are append-only; history is read back ordered by created_at.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProposalID uuid.UUID `gorm:"type:uuid;index;not null" json:"proposal_id"`
	JobID      uuid.UUID `gorm:"type:uuid;index;not null" json:"job_id"`

	SenderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"type:uuid;index;not null" json:"receiver_id"`

	Type    string `gorm:"type:varchar(20);default:'text'" json:"type"` // text, system
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
