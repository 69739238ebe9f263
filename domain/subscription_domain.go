package domain

var (
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrSelfSubscription     = newError(ErrValidation, "self-subscription forbidden")
	ErrAlreadySubscribed    = newError(ErrConflict, "subscription already exists")
	ErrSubscriptionNotFound = newError(ErrNotFound, "subscription not found")
)

type (
	Subscription struct {
		UserResponse
		Recipes      []RecipeMinified `json:"recipes"`
		RecipesCount int64            `json:"recipes_count"`
	}
)
