package catalog

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const maxSlugAttempts = 100

type (
	CatalogService interface {
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTag(ctx context.Context, id string) (domain.TagResponse, error)
		CreateTag(ctx context.Context, name string) (domain.TagResponse, error)

		SearchIngredients(ctx context.Context, prefix string) ([]domain.IngredientResponse, error)
		GetIngredient(ctx context.Context, id string) (domain.IngredientResponse, error)
		ImportIngredients(ctx context.Context, rows []domain.IngredientImportRow) (domain.IngredientImportResult, error)
	}

	catalogService struct {
		catalogRepository CatalogRepository
	}
)

func NewCatalogService(catalogRepository CatalogRepository) CatalogService {
	return &catalogService{catalogRepository: catalogRepository}
}

func (s *catalogService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.catalogRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		res = append(res, ToTagResponse(tag))
	}
	return res, nil
}

func (s *catalogService) GetTag(ctx context.Context, id string) (domain.TagResponse, error) {
	tagID, err := uuid.Parse(id)
	if err != nil {
		return domain.TagResponse{}, domain.ErrTagNotFound
	}

	tag, err := s.catalogRepository.GetTagByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

// CreateTag derives the slug from the name, suffixing -2, -3... until free.
func (s *catalogService) CreateTag(ctx context.Context, name string) (domain.TagResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.TagResponse{}, domain.NewValidationError("name", "this field is required")
	}
	if len([]rune(name)) > domain.MaxLengthTagName {
		return domain.TagResponse{}, domain.NewValidationError("name", "ensure this field has no more than 32 characters")
	}

	base := Slugify(name)
	if base == "" {
		return domain.TagResponse{}, domain.NewValidationError("name", "name produces an empty slug")
	}

	slug := base
	for n := 2; ; n++ {
		exists, err := s.catalogRepository.TagSlugExists(ctx, slug)
		if err != nil {
			return domain.TagResponse{}, err
		}
		if !exists {
			break
		}
		if n > maxSlugAttempts {
			return domain.TagResponse{}, errors.Errorf("no free slug for tag %q", name)
		}
		slug = withSuffix(base, n)
	}

	tag := &entities.Tag{Name: name, Slug: slug}
	if err := s.catalogRepository.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagAlreadyExists
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func (s *catalogService) SearchIngredients(ctx context.Context, prefix string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.catalogRepository.SearchIngredients(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, err
	}

	res := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		res = append(res, ToIngredientResponse(ingredient))
	}
	return res, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id string) (domain.IngredientResponse, error) {
	ingredientID, err := uuid.Parse(id)
	if err != nil {
		return domain.IngredientResponse{}, domain.ErrIngredientNotFound
	}

	ingredient, err := s.catalogRepository.GetIngredientByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return ToIngredientResponse(ingredient), nil
}

func (s *catalogService) ImportIngredients(ctx context.Context, rows []domain.IngredientImportRow) (domain.IngredientImportResult, error) {
	var result domain.IngredientImportResult
	for _, row := range rows {
		created, err := s.catalogRepository.FirstOrCreateIngredient(ctx, &entities.Ingredient{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
		})
		if err != nil {
			return result, err
		}
		if created {
			result.Added++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func ToTagResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:   tag.ID.String(),
		Name: tag.Name,
		Slug: tag.Slug,
	}
}

func ToIngredientResponse(ingredient *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
