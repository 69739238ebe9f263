package entities

import "time"

type Timestamp struct {
	CreatedAt time.Time `gorm:"type:timestamp with time zone;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp with time zone;not null;default:now()" json:"updated_at"`
}
