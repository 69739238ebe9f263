package subscription

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/metrics"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/user"
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, subscriberID, authorID string, recipesLimit string) (domain.Subscription, error)
		Unsubscribe(ctx context.Context, subscriberID, authorID string) error
		GetSubscriptions(ctx context.Context, subscriberID string, p domain.PaginationRequest, recipesLimit string) ([]domain.Subscription, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
		recipeRepository       recipe.RecipeRepository
	}
)

func NewSubscriptionService(
	subscriptionRepository SubscriptionRepository,
	userRepository user.UserRepository,
	recipeRepository recipe.RecipeRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
		recipeRepository:       recipeRepository,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, authorID string, recipesLimit string) (domain.Subscription, error) {
	subscriber, author, err := s.resolve(ctx, subscriberID, authorID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if subscriber == author.ID {
		return domain.Subscription{}, domain.ErrSelfSubscription
	}

	exists, err := s.subscriptionRepository.CheckSubscription(ctx, subscriber, author.ID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if exists {
		return domain.Subscription{}, domain.ErrAlreadySubscribed
	}

	if err := s.subscriptionRepository.CreateSubscription(ctx, &entities.Subscription{
		AuthorID:     author.ID,
		SubscriberID: subscriber,
	}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Subscription{}, domain.ErrAlreadySubscribed
		}
		return domain.Subscription{}, err
	}
	metrics.RecordSubscriptionChange(true)

	cards, err := s.cards(ctx, []*entities.User{author}, ParseRecipesLimit(recipesLimit))
	if err != nil {
		return domain.Subscription{}, err
	}
	return cards[0], nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	subscriber, author, err := s.resolve(ctx, subscriberID, authorID)
	if err != nil {
		return err
	}

	removed, err := s.subscriptionRepository.DeleteSubscription(ctx, subscriber, author.ID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrSubscriptionNotFound
	}

	metrics.RecordSubscriptionChange(false)
	return nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, subscriberID string, p domain.PaginationRequest, recipesLimit string) ([]domain.Subscription, int64, error) {
	subscriber, err := uuid.Parse(subscriberID)
	if err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	authors, count, err := s.subscriptionRepository.GetAuthors(ctx, subscriber, p.Limit, utils.Offset(p))
	if err != nil {
		return nil, 0, err
	}

	cards, err := s.cards(ctx, authors, ParseRecipesLimit(recipesLimit))
	if err != nil {
		return nil, 0, err
	}
	return cards, count, nil
}

func (s *subscriptionService) resolve(ctx context.Context, subscriberID, authorID string) (uuid.UUID, *entities.User, error) {
	subscriber, err := uuid.Parse(subscriberID)
	if err != nil {
		return uuid.Nil, nil, domain.ErrParseUUID
	}

	id, err := uuid.Parse(authorID)
	if err != nil {
		return uuid.Nil, nil, domain.ErrUserNotFound
	}

	author, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil, domain.ErrUserNotFound
		}
		return uuid.Nil, nil, err
	}
	return subscriber, author, nil
}

// cards builds author cards for a subscriber. Every author in the list is
// followed by the caller, so is_subscribed is always true.
func (s *subscriptionService) cards(ctx context.Context, authors []*entities.User, recipesLimit int) ([]domain.Subscription, error) {
	ids := make([]uuid.UUID, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, author.ID)
	}

	counts, err := s.recipeRepository.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	recipes, err := s.recipeRepository.GetRecipesByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, err
	}
	byAuthor := make(map[uuid.UUID][]domain.RecipeMinified, len(authors))
	for _, r := range recipes {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], recipe.ToRecipeMinified(r))
	}

	res := make([]domain.Subscription, 0, len(authors))
	for _, author := range authors {
		card := domain.Subscription{
			UserResponse: user.ToUserResponse(author, true),
			Recipes:      byAuthor[author.ID],
			RecipesCount: counts[author.ID],
		}
		if card.Recipes == nil {
			card.Recipes = []domain.RecipeMinified{}
		}
		res = append(res, card)
	}
	return res, nil
}

// ParseRecipesLimit returns the per-author recipe cap, or -1 (no cap) when
// raw is absent or not a non-negative integer.
func ParseRecipesLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return -1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
