package subscription

import (
	"Foodgram-Backend/entities"
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	SubscriptionRepository interface {
		CheckSubscription(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error)
		CreateSubscription(ctx context.Context, subscription *entities.Subscription) error
		DeleteSubscription(ctx context.Context, subscriberID, authorID uuid.UUID) (int64, error)
		GetAuthors(ctx context.Context, subscriberID uuid.UUID, limit, offset int) ([]*entities.User, int64, error)
		GetSubscribedAuthorIDs(ctx context.Context, subscriberID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	}

	subscriptionRepository struct {
		db *gorm.DB
	}
)

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) CheckSubscription(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check subscription")
	}
	return count > 0, nil
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	return r.db.WithContext(ctx).Omit("Author", "Subscriber").Create(subscription).Error
}

func (r *subscriptionRepository) DeleteSubscription(ctx context.Context, subscriberID, authorID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&entities.Subscription{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete subscription")
	}
	return res.RowsAffected, nil
}

// GetAuthors pages through the users followed by subscriberID, newest
// subscription first.
func (r *subscriptionRepository) GetAuthors(ctx context.Context, subscriberID uuid.UUID, limit, offset int) ([]*entities.User, int64, error) {
	var authors []*entities.User
	var count int64

	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count subscriptions")
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error; err != nil {
		return nil, 0, errors.Wrap(err, "get subscribed authors")
	}
	return authors, count, nil
}

func (r *subscriptionRepository) GetSubscribedAuthorIDs(ctx context.Context, subscriberID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return subscribed, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("subscriber_id = ? AND author_id IN ?", subscriberID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "get subscribed authors")
	}
	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}
