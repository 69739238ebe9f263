package catalog

import (
	"Foodgram-Backend/entities"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	CatalogRepository interface {
		GetTags(ctx context.Context) ([]*entities.Tag, error)
		GetTagByID(ctx context.Context, id uuid.UUID) (*entities.Tag, error)
		GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error)
		TagSlugExists(ctx context.Context, slug string) (bool, error)
		CreateTag(ctx context.Context, tag *entities.Tag) error

		SearchIngredients(ctx context.Context, prefix string) ([]*entities.Ingredient, error)
		GetIngredientByID(ctx context.Context, id uuid.UUID) (*entities.Ingredient, error)
		GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error)
		FirstOrCreateIngredient(ctx context.Context, ingredient *entities.Ingredient) (bool, error)
	}

	catalogRepository struct {
		db *gorm.DB
	}
)

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetTags(ctx context.Context) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	if err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "get tags")
	}
	return tags, nil
}

func (r *catalogRepository) GetTagByID(ctx context.Context, id uuid.UUID) (*entities.Tag, error) {
	var tag entities.Tag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *catalogRepository) GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "get tags by ids")
	}
	return tags, nil
}

func (r *catalogRepository) TagSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check tag slug")
	}
	return count > 0, nil
}

func (r *catalogRepository) CreateTag(ctx context.Context, tag *entities.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *catalogRepository) SearchIngredients(ctx context.Context, prefix string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	query := r.db.WithContext(ctx)
	if prefix != "" {
		query = query.Where("name ILIKE ?", escapeLike(prefix)+"%")
	}
	if err := query.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, errors.Wrap(err, "search ingredients")
	}
	return ingredients, nil
}

func (r *catalogRepository) GetIngredientByID(ctx context.Context, id uuid.UUID) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *catalogRepository) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, errors.Wrap(err, "get ingredients by ids")
	}
	return ingredients, nil
}

// FirstOrCreateIngredient reports whether a new row was inserted.
func (r *catalogRepository) FirstOrCreateIngredient(ctx context.Context, ingredient *entities.Ingredient) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(entities.Ingredient{Name: ingredient.Name, MeasurementUnit: ingredient.MeasurementUnit}).
		FirstOrCreate(ingredient)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "first or create ingredient %q", ingredient.Name)
	}
	return res.RowsAffected > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
