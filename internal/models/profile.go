package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is the normalized shape a parsed CV is stored as. Skills,
// education and experience are validated into arrays once at ingestion
// instead of staying polymorphic through the system.
type Profile struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"index" json:"email"`
	Phone string `gorm:"type:varchar(30)" json:"phone"`

	Bio      string `gorm:"type:text" json:"bio"`
	ShortBio string `gorm:"type:text" json:"short_bio"`

	Skills     datatypes.JSON `json:"skills"`     // ["Go", "React", ...]
	Education  datatypes.JSON `json:"education"`  // [{degree, institution, year}, ...]
	Experience datatypes.JSON `json:"experience"` // [{title, company, duration}, ...]

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
