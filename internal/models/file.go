package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// File is a metadata row for an upload stored on local disk under
// uploads/<user_id>/. Access is gated by ownership or, when linked to a
// job, by job membership (client or accepted freelancer).
type File struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	JobID      *uuid.UUID `gorm:"type:uuid;index" json:"job_id,omitempty"`
	ProposalID *uuid.UUID `gorm:"type:uuid;index" json:"proposal_id,omitempty"`

	Filename string `gorm:"not null" json:"filename"`
	Path     string `gorm:"type:text;not null" json:"path"`
	Mimetype string `gorm:"type:varchar(120)" json:"mimetype"`
	Size     int64  `json:"size"`

	Tags datatypes.JSON `json:"tags,omitempty"`

	CreatedAt time.Time `json:"uploaded_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Job  *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
}
