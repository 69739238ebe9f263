package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// RecipeQuery is the storage-level form of domain.RecipeFilter.
	RecipeQuery struct {
		TagSlugs    []string
		AuthorID    *uuid.UUID
		FavoritedBy *uuid.UUID
		InCartOf    *uuid.UUID
		Limit       int
		Offset      int
	}

	RecipeRepository interface {
		Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error

		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error
		DeleteRecipe(ctx context.Context, id uuid.UUID) error
		ReplaceTags(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag) error
		ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []*entities.RecipeIngredient) error

		GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		GetRecipeDetail(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, query RecipeQuery) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID, perAuthor int) ([]*entities.Recipe, error)
		CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)

		ShortLinkExists(ctx context.Context, link string) (bool, error)
		AssignShortLink(ctx context.Context, id uuid.UUID, link string) (bool, error)
		GetRecipeIDByShortLink(ctx context.Context, link string) (uuid.UUID, error)

		RelationExists(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) (bool, error)
		AddRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) error
		RemoveRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) (int64, error)
		GetRelationFlags(ctx context.Context, kind domain.RelationKind, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)

		GetShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recipeRepository{db: tx})
	})
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
}

func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).
		Model(recipe).
		Omit(clause.Associations).
		Select("name", "text", "cooking_time", "image", "updated_at").
		Updates(recipe).Error
}

// DeleteRecipe relies on ON DELETE CASCADE for tag links, ingredient lines,
// favorites and cart entries.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) ReplaceTags(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag) error {
	return r.db.WithContext(ctx).
		Model(recipe).
		Association("Tags").
		Replace(tags)
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []*entities.RecipeIngredient) error {
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&entities.RecipeIngredient{}).Error; err != nil {
		return errors.Wrap(err, "delete ingredient lines")
	}
	if len(lines) == 0 {
		return nil
	}
	for _, line := range lines {
		line.RecipeID = recipeID
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipeDetail(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.withDetails(r.db.WithContext(ctx)).
		Where("recipes.id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, query RecipeQuery) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	filtered := r.filter(ctx, query)
	if err := filtered.Model(&entities.Recipe{}).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count recipes")
	}

	if err := r.withDetails(r.filter(ctx, query)).
		Order("recipes.created_at desc").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&recipes).Error; err != nil {
		return nil, 0, errors.Wrap(err, "get recipes")
	}

	return recipes, count, nil
}

func (r *recipeRepository) filter(ctx context.Context, query RecipeQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if len(query.TagSlugs) > 0 {
		tagged := r.db.WithContext(ctx).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", query.TagSlugs)
		db = db.Where("recipes.id IN (?)", tagged)
	}
	if query.AuthorID != nil {
		db = db.Where("recipes.author_id = ?", *query.AuthorID)
	}
	if query.FavoritedBy != nil {
		favorited := r.db.WithContext(ctx).
			Model(&entities.Favorite{}).
			Select("recipe_id").
			Where("user_id = ?", *query.FavoritedBy)
		db = db.Where("recipes.id IN (?)", favorited)
	}
	if query.InCartOf != nil {
		inCart := r.db.WithContext(ctx).
			Model(&entities.ShoppingCart{}).
			Select("recipe_id").
			Where("user_id = ?", *query.InCartOf)
		db = db.Where("recipes.id IN (?)", inCart)
	}
	return db
}

func (r *recipeRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name asc")
		}).
		Preload("Ingredients.Ingredient")
}

// GetRecipesByAuthors returns the newest recipes of each author, newest
// first. perAuthor < 0 means no limit.
func (r *recipeRepository) GetRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID, perAuthor int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	if len(authorIDs) == 0 || perAuthor == 0 {
		return recipes, nil
	}

	if perAuthor < 0 {
		if err := r.db.WithContext(ctx).
			Where("author_id IN ?", authorIDs).
			Order("created_at desc").
			Find(&recipes).Error; err != nil {
			return nil, errors.Wrap(err, "get recipes by authors")
		}
		return recipes, nil
	}

	ranked := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Select("recipes.*, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY created_at DESC) AS rn").
		Where("author_id IN ?", authorIDs)
	if err := r.db.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Where("rn <= ?", perAuthor).
		Order("created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, errors.Wrap(err, "get limited recipes by authors")
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count recipes by authors")
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) ShortLinkExists(ctx context.Context, link string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("short_link = ?", link).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check short link")
	}
	return count > 0, nil
}

// AssignShortLink sets the link only if the recipe has none yet and reports
// whether this call wrote it.
func (r *recipeRepository) AssignShortLink(ctx context.Context, id uuid.UUID, link string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ? AND short_link IS NULL", id).
		Update("short_link", link)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recipeRepository) GetRecipeIDByShortLink(ctx context.Context, link string) (uuid.UUID, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("short_link = ?", link).
		First(&recipe).Error; err != nil {
		return uuid.Nil, err
	}
	return recipe.ID, nil
}

func relationModel(kind domain.RelationKind) any {
	if kind == domain.RelationShoppingCart {
		return &entities.ShoppingCart{}
	}
	return &entities.Favorite{}
}

func (r *recipeRepository) RelationExists(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(relationModel(kind)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "check %s", kind)
	}
	return count > 0, nil
}

func (r *recipeRepository) AddRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) error {
	var row any
	if kind == domain.RelationShoppingCart {
		row = &entities.ShoppingCart{UserID: userID, RecipeID: recipeID}
	} else {
		row = &entities.Favorite{UserID: userID, RecipeID: recipeID}
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error
}

func (r *recipeRepository) RemoveRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(relationModel(kind))
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "remove %s", kind)
	}
	return res.RowsAffected, nil
}

// GetRelationFlags answers "is recipe X marked by user" for a whole page in
// one query.
func (r *recipeRepository) GetRelationFlags(ctx context.Context, kind domain.RelationKind, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	flags := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return flags, nil
	}

	var marked []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(relationModel(kind)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &marked).Error; err != nil {
		return nil, errors.Wrapf(err, "get %s flags", kind)
	}
	for _, id := range marked {
		flags[id] = true
	}
	return flags, nil
}

func (r *recipeRepository) GetShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error) {
	var items []domain.ShoppingListItem
	if err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount)::bigint AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name asc, ingredients.measurement_unit asc").
		Scan(&items).Error; err != nil {
		return nil, errors.Wrap(err, "aggregate shopping list")
	}
	return items, nil
}
