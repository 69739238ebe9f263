package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	FirstName string    `gorm:"size:150;not null" json:"first_name"`
	LastName  string    `gorm:"size:150;not null" json:"last_name"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `json:"avatar,omitempty"`

	Timestamp
}
