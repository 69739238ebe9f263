package entities

import (
	"github.com/google/uuid"
)

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"size:32;not null;uniqueIndex" json:"name"`
	Slug string    `gorm:"size:32;not null;uniqueIndex" json:"slug"`

	Timestamp
}

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name            string    `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string    `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`

	Timestamp
}
