package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`

	// empty for Google-only accounts
	Password string `json:"-"`
	GoogleID string `gorm:"index" json:"-"`

	Role       Role `gorm:"type:varchar(20);not null;index" json:"role"`
	IsVerified bool `gorm:"default:false" json:"is_verified"`
	Onboarded  bool `gorm:"default:false" json:"onboarded"`

	// predefined + custom interests picked during onboarding
	Interests datatypes.JSON `json:"interests"`

	// set whenever the client/freelancer toggle is used
	RoleChangedAt *time.Time `json:"role_changed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
