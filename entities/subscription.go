package entities

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a directed follow edge from SubscriberID to AuthorID.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair;index" json:"author_id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair;check:chk_subscription_not_self,author_id <> subscriber_id" json:"subscriber_id"`
	CreatedAt    time.Time `gorm:"type:timestamp with time zone;not null;default:now()" json:"created_at"`

	Author     *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Subscriber *User `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
}
