package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/metrics"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/catalog"
	"Foodgram-Backend/pkg/user"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const imageFolder = "recipes"

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) ([]domain.Recipe, int64, error)
		GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.Recipe, error)
		CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (domain.Recipe, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.RecipeRequest, userID string, partial bool) (domain.Recipe, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error

		AddRelation(ctx context.Context, kind domain.RelationKind, recipeID string, userID string) (domain.RecipeMinified, error)
		RemoveRelation(ctx context.Context, kind domain.RelationKind, recipeID string, userID string) error
		DownloadShoppingList(ctx context.Context, userID string) (string, error)

		GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, token string) (string, error)
	}

	Options struct {
		AppURL            string
		ShortLinkAttempts int
		GenerateShortLink ShortLinkGenerator
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		subscriptions     user.SubscriptionLookup
		s3                storage.AwsS3
		log               *logrus.Logger
		opts              Options
	}

	// validatedRecipe holds the resolved references of a request that passed
	// validation. Nil fields were absent from a partial update.
	validatedRecipe struct {
		lines []*entities.RecipeIngredient
		tags  []*entities.Tag
		image []byte
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	subscriptions user.SubscriptionLookup,
	s3 storage.AwsS3,
	log *logrus.Logger,
	opts Options,
) RecipeService {
	if opts.ShortLinkAttempts < 1 {
		opts.ShortLinkAttempts = 1
	}
	if opts.GenerateShortLink == nil {
		opts.GenerateShortLink = NewShortLinkGenerator(DefaultShortLinkLength)
	}
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		subscriptions:     subscriptions,
		s3:                s3,
		log:               log,
		opts:              opts,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) ([]domain.Recipe, int64, error) {
	query := RecipeQuery{
		TagSlugs: filter.Tags,
		Limit:    filter.Limit,
		Offset:   utils.Offset(filter.PaginationRequest),
	}

	if filter.AuthorID != "" {
		authorID, err := uuid.Parse(filter.AuthorID)
		if err != nil {
			return []domain.Recipe{}, 0, nil
		}
		query.AuthorID = &authorID
	}

	viewer, anonymous := parseViewer(viewerID)
	if !anonymous {
		if filter.IsFavorited {
			query.FavoritedBy = &viewer
		}
		if filter.IsInShoppingCart {
			query.InCartOf = &viewer
		}
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	res, err := s.materialize(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.Recipe, error) {
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.Recipe{}, domain.ErrRecipeNotFound
	}
	return s.detail(ctx, id, viewerID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (domain.Recipe, error) {
	author, err := uuid.Parse(authorID)
	if err != nil {
		return domain.Recipe{}, domain.ErrParseUUID
	}

	valid, err := s.validate(ctx, req, false, true)
	if err != nil {
		return domain.Recipe{}, err
	}

	imageURL, objectKey, err := s.uploadImage(ctx, valid.image)
	if err != nil {
		return domain.Recipe{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    author,
		Name:        strings.TrimSpace(*req.Name),
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
		Image:       imageURL,
	}

	err = s.recipeRepository.Transaction(ctx, func(repo RecipeRepository) error {
		if err := repo.CreateRecipe(ctx, recipe); err != nil {
			return errors.Wrap(err, "create recipe")
		}
		if err := repo.ReplaceTags(ctx, recipe, valid.tags); err != nil {
			return errors.Wrap(err, "set recipe tags")
		}
		return repo.ReplaceIngredients(ctx, recipe.ID, valid.lines)
	})
	if err != nil {
		s.deleteObject(ctx, objectKey)
		return domain.Recipe{}, err
	}

	metrics.RecipesCreated.Inc()
	s.log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "author_id": author}).Info("recipe created")

	return s.detail(ctx, recipe.ID, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.RecipeRequest, userID string, partial bool) (domain.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, recipeID, userID)
	if err != nil {
		return domain.Recipe{}, err
	}

	valid, err := s.validate(ctx, req, partial, false)
	if err != nil {
		return domain.Recipe{}, err
	}

	if req.Name != nil {
		recipe.Name = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}

	oldImage := recipe.Image
	var newObjectKey string
	if valid.image != nil {
		recipe.Image, newObjectKey, err = s.uploadImage(ctx, valid.image)
		if err != nil {
			return domain.Recipe{}, err
		}
	}

	err = s.recipeRepository.Transaction(ctx, func(repo RecipeRepository) error {
		if err := repo.UpdateRecipe(ctx, recipe); err != nil {
			return errors.Wrap(err, "update recipe")
		}
		if valid.tags != nil {
			if err := repo.ReplaceTags(ctx, recipe, valid.tags); err != nil {
				return errors.Wrap(err, "replace recipe tags")
			}
		}
		if valid.lines != nil {
			return repo.ReplaceIngredients(ctx, recipe.ID, valid.lines)
		}
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, newObjectKey)
		return domain.Recipe{}, err
	}

	if newObjectKey != "" {
		s.deleteObject(ctx, s.s3.GetObjectKeyFromLink(oldImage))
	}

	return s.detail(ctx, recipe.ID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.ownedRecipe(ctx, recipeID, userID)
	if err != nil {
		return err
	}

	err = s.recipeRepository.Transaction(ctx, func(repo RecipeRepository) error {
		return repo.DeleteRecipe(ctx, recipe.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	s.deleteObject(ctx, s.s3.GetObjectKeyFromLink(recipe.Image))
	return nil
}

func (s *recipeService) AddRelation(ctx context.Context, kind domain.RelationKind, recipeID string, userID string) (domain.RecipeMinified, error) {
	if !kind.Valid() {
		return domain.RecipeMinified{}, domain.ErrInvalidRelationKind
	}
	recipe, userUUID, err := s.relationTarget(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeMinified{}, err
	}

	exists, err := s.recipeRepository.RelationExists(ctx, kind, userUUID, recipe.ID)
	if err != nil {
		return domain.RecipeMinified{}, err
	}
	if exists {
		return domain.RecipeMinified{}, kind.ErrExists()
	}

	if err := s.recipeRepository.AddRelation(ctx, kind, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeMinified{}, kind.ErrExists()
		}
		return domain.RecipeMinified{}, err
	}

	metrics.RecordRelationChange(string(kind), true)
	return ToRecipeMinified(recipe), nil
}

func (s *recipeService) RemoveRelation(ctx context.Context, kind domain.RelationKind, recipeID string, userID string) error {
	if !kind.Valid() {
		return domain.ErrInvalidRelationKind
	}
	recipe, userUUID, err := s.relationTarget(ctx, recipeID, userID)
	if err != nil {
		return err
	}

	removed, err := s.recipeRepository.RemoveRelation(ctx, kind, userUUID, recipe.ID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return kind.ErrMissing()
	}

	metrics.RecordRelationChange(string(kind), false)
	return nil
}

func (s *recipeService) DownloadShoppingList(ctx context.Context, userID string) (string, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return "", domain.ErrParseUUID
	}

	items, err := s.recipeRepository.GetShoppingList(ctx, userUUID)
	if err != nil {
		return "", err
	}

	metrics.ShoppingListDownloads.Inc()
	return RenderShoppingList(items), nil
}

// GetShortLink returns the recipe's short URL, assigning a token on first
// use. A token that is already taken fails the attempt; once all attempts
// are spent the call returns domain.ErrShortLinkGeneration.
func (s *recipeService) GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortLinkResponse{}, err
	}
	if recipe.ShortLink != nil {
		return s.shortLinkResponse(*recipe.ShortLink), nil
	}

	for attempt := 0; attempt < s.opts.ShortLinkAttempts; attempt++ {
		token, err := s.opts.GenerateShortLink()
		if err != nil {
			return domain.ShortLinkResponse{}, errors.Wrap(err, "generate short link")
		}

		taken, err := s.recipeRepository.ShortLinkExists(ctx, token)
		if err != nil {
			return domain.ShortLinkResponse{}, err
		}
		if taken {
			metrics.ShortLinkCollisions.Inc()
			continue
		}

		assigned, err := s.recipeRepository.AssignShortLink(ctx, recipe.ID, token)
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				metrics.ShortLinkCollisions.Inc()
				continue
			}
			return domain.ShortLinkResponse{}, err
		}
		if assigned {
			metrics.ShortLinksAssigned.Inc()
			return s.shortLinkResponse(token), nil
		}

		// Another request assigned a token between our read and write.
		current, err := s.recipeRepository.GetRecipeByID(ctx, recipe.ID)
		if err != nil {
			return domain.ShortLinkResponse{}, err
		}
		if current.ShortLink != nil {
			return s.shortLinkResponse(*current.ShortLink), nil
		}
	}

	s.log.WithField("recipe_id", recipe.ID).Warn("short link generation collided")
	return domain.ShortLinkResponse{}, domain.ErrShortLinkGeneration
}

func (s *recipeService) ResolveShortLink(ctx context.Context, token string) (string, error) {
	id, err := s.recipeRepository.GetRecipeIDByShortLink(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrShortLinkNotFound
		}
		return "", err
	}
	return id.String(), nil
}

func (s *recipeService) shortLinkResponse(token string) domain.ShortLinkResponse {
	return domain.ShortLinkResponse{ShortLink: ShortLinkURL(s.opts.AppURL, token)}
}

// validate checks the request in a fixed order and stops at the first
// failing field: ingredients, tags, cooking_time, image, name, text.
func (s *recipeService) validate(ctx context.Context, req domain.RecipeRequest, partial, creating bool) (validatedRecipe, error) {
	var valid validatedRecipe
	var err error

	if !partial || req.Ingredients != nil {
		if valid.lines, err = s.validateIngredients(ctx, req.Ingredients); err != nil {
			return valid, err
		}
	}

	if !partial || req.Tags != nil {
		if valid.tags, err = s.validateTags(ctx, req.Tags); err != nil {
			return valid, err
		}
	}

	if req.CookingTime == nil {
		if !partial {
			return valid, domain.NewValidationError("cooking_time", "this field is required")
		}
	} else if *req.CookingTime < domain.MinCookingTime {
		return valid, domain.NewValidationError("cooking_time", fmt.Sprintf("cooking time must be at least %d", domain.MinCookingTime))
	} else if *req.CookingTime > domain.MaxCookingTime {
		return valid, domain.NewValidationError("cooking_time", fmt.Sprintf("cooking time must be at most %d", domain.MaxCookingTime))
	}

	if req.Image == nil {
		if creating {
			return valid, domain.NewValidationError("image", "this field is required")
		}
	} else {
		if strings.TrimSpace(*req.Image) == "" {
			return valid, domain.NewValidationError("image", "this field may not be empty")
		}
		if valid.image, err = storage.DecodeBase64Image(*req.Image); err != nil {
			return valid, domain.NewValidationError("image", storage.ErrInvalidImage.Error())
		}
	}

	if req.Name == nil {
		if !partial {
			return valid, domain.NewValidationError("name", "this field is required")
		}
	} else {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return valid, domain.NewValidationError("name", "this field may not be blank")
		}
		if len([]rune(name)) > domain.MaxLengthRecipeName {
			return valid, domain.NewValidationError("name", fmt.Sprintf("ensure this field has no more than %d characters", domain.MaxLengthRecipeName))
		}
	}

	if req.Text == nil {
		if !partial {
			return valid, domain.NewValidationError("text", "this field is required")
		}
	} else if strings.TrimSpace(*req.Text) == "" {
		return valid, domain.NewValidationError("text", "this field may not be blank")
	}

	return valid, nil
}

func (s *recipeService) validateIngredients(ctx context.Context, items []domain.RecipeIngredientRequest) ([]*entities.RecipeIngredient, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("ingredients", "at least one ingredient is required")
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, domain.NewValidationError("ingredients", fmt.Sprintf("ingredient %q does not exist", item.ID))
		}
		if _, dup := seen[id]; dup {
			return nil, domain.NewValidationError("ingredients", "ingredients must not repeat")
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, item := range items {
		if item.Amount < domain.MinIngredientAmount {
			return nil, domain.NewValidationError("ingredients", fmt.Sprintf("amount must be at least %d", domain.MinIngredientAmount))
		}
		if item.Amount > domain.MaxIngredientAmount {
			return nil, domain.NewValidationError("ingredients", fmt.Sprintf("amount must be at most %d", domain.MaxIngredientAmount))
		}
	}

	found, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		known := make(map[uuid.UUID]struct{}, len(found))
		for _, ingredient := range found {
			known[ingredient.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, domain.NewValidationError("ingredients", fmt.Sprintf("ingredient %q does not exist", id))
			}
		}
	}

	lines := make([]*entities.RecipeIngredient, 0, len(items))
	for i, item := range items {
		lines = append(lines, &entities.RecipeIngredient{IngredientID: ids[i], Amount: item.Amount})
	}
	return lines, nil
}

func (s *recipeService) validateTags(ctx context.Context, raw []string) ([]*entities.Tag, error) {
	if len(raw) == 0 {
		return nil, domain.NewValidationError("tags", "at least one tag is required")
	}

	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, domain.NewValidationError("tags", fmt.Sprintf("tag %q does not exist", value))
		}
		if _, dup := seen[id]; dup {
			return nil, domain.NewValidationError("tags", "tags must not repeat")
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	tags, err := s.catalogRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.NewValidationError("tags", "one or more tags do not exist")
	}
	return tags, nil
}

func (s *recipeService) uploadImage(ctx context.Context, image []byte) (string, string, error) {
	objectKey, err := s.s3.UploadFile(ctx, uuid.NewString(), image, imageFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllowed) {
			return "", "", domain.NewValidationError("image", storage.ErrInvalidImage.Error())
		}
		return "", "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), objectKey, nil
}

func (s *recipeService) deleteObject(ctx context.Context, objectKey string) {
	if objectKey == "" {
		return
	}
	if err := s.s3.DeleteFile(ctx, objectKey); err != nil {
		s.log.WithError(err).WithField("object_key", objectKey).Warn("failed to delete recipe image")
	}
}

func (s *recipeService) ownedRecipe(ctx context.Context, recipeID string, userID string) (*entities.Recipe, error) {
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, domain.ErrRecipeNotFound
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}

	if recipe.AuthorID.String() != userID {
		return nil, domain.ErrUnauthorizedRecipeAccess
	}
	return recipe, nil
}

func (s *recipeService) relationTarget(ctx context.Context, recipeID string, userID string) (*entities.Recipe, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}

	id, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrRecipeNotFound
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, domain.ErrRecipeNotFound
		}
		return nil, uuid.Nil, err
	}
	return recipe, userUUID, nil
}

func (s *recipeService) detail(ctx context.Context, id uuid.UUID, viewerID string) (domain.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recipe{}, domain.ErrRecipeNotFound
		}
		return domain.Recipe{}, err
	}

	res, err := s.materialize(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.Recipe{}, err
	}
	return res[0], nil
}

// materialize converts recipes to responses, resolving the viewer-relative
// flags with one query per flag for the whole slice.
func (s *recipeService) materialize(ctx context.Context, recipes []*entities.Recipe, viewerID string) ([]domain.Recipe, error) {
	res := make([]domain.Recipe, 0, len(recipes))

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	viewer, anonymous := parseViewer(viewerID)
	if !anonymous && len(recipes) > 0 {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, recipe := range recipes {
			recipeIDs = append(recipeIDs, recipe.ID)
			authorIDs = append(authorIDs, recipe.AuthorID)
		}

		var err error
		if favorited, err = s.recipeRepository.GetRelationFlags(ctx, domain.RelationFavorite, viewer, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = s.recipeRepository.GetRelationFlags(ctx, domain.RelationShoppingCart, viewer, recipeIDs); err != nil {
			return nil, err
		}
		if subscribed, err = s.subscriptions.GetSubscribedAuthorIDs(ctx, viewer, authorIDs); err != nil {
			return nil, err
		}
	}

	for _, recipe := range recipes {
		item := ToRecipeResponse(recipe)
		item.IsFavorited = favorited[recipe.ID]
		item.IsInShoppingCart = inCart[recipe.ID]
		item.Author.IsSubscribed = subscribed[recipe.AuthorID]
		res = append(res, item)
	}
	return res, nil
}

func parseViewer(viewerID string) (uuid.UUID, bool) {
	if viewerID == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(viewerID)
	if err != nil {
		return uuid.Nil, true
	}
	return id, false
}

func ToRecipeResponse(recipe *entities.Recipe) domain.Recipe {
	res := domain.Recipe{
		ID:          recipe.ID.String(),
		Tags:        make([]domain.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
		Name:        recipe.Name,
		Image:       recipe.Image,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
	}
	if recipe.Author != nil {
		res.Author = user.ToUserResponse(recipe.Author, false)
	}

	for _, tag := range recipe.Tags {
		res.Tags = append(res.Tags, catalog.ToTagResponse(tag))
	}

	for _, line := range recipe.Ingredients {
		item := domain.RecipeIngredientResponse{
			ID:     line.IngredientID.String(),
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		res.Ingredients = append(res.Ingredients, item)
	}
	sort.SliceStable(res.Ingredients, func(i, j int) bool {
		return res.Ingredients[i].Name < res.Ingredients[j].Name
	})

	return res
}

func ToRecipeMinified(recipe *entities.Recipe) domain.RecipeMinified {
	return domain.RecipeMinified{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}
