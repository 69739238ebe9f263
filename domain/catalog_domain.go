package domain

var (
	MessageSuccessGetTags        = "success get tags"
	MessageSuccessGetTag         = "success get tag"
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetIngredient  = "success get ingredient"

	MessageFailedGetTags        = "failed to get tags"
	MessageFailedGetTag         = "failed to get tag"
	MessageFailedGetIngredients = "failed to get ingredients"
	MessageFailedGetIngredient  = "failed to get ingredient"

	ErrTagNotFound        = newError(ErrNotFound, "tag not found")
	ErrIngredientNotFound = newError(ErrNotFound, "ingredient not found")
	ErrTagAlreadyExists   = newError(ErrConflict, "tag with this name already exists")
)

type (
	TagResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	IngredientImportRow struct {
		Name            string
		MeasurementUnit string
	}

	IngredientImportResult struct {
		Added   int
		Skipped int
	}
)
