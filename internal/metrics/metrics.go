package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Recipes
	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_recipes_created_total",
			Help: "Total number of recipes created",
		},
	)

	RecipeRelationChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_relation_changes_total",
			Help: "Favorite and shopping cart additions and removals",
		},
		[]string{"kind", "action"},
	)

	ShortLinksAssigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_short_links_assigned_total",
			Help: "Total number of short links assigned to recipes",
		},
	)

	ShortLinkCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_collisions_total",
			Help: "Generated short link tokens that were already taken",
		},
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	// Users
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_users_registered_total",
			Help: "Total number of registered users",
		},
	)

	SubscriptionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_subscription_changes_total",
			Help: "Subscriptions created and removed",
		},
		[]string{"action"},
	)
)

func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordRelationChange(kind string, added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	RecipeRelationChanges.WithLabelValues(kind, action).Inc()
}

func RecordSubscriptionChange(added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	SubscriptionChanges.WithLabelValues(action).Inc()
}
