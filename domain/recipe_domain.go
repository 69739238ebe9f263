package domain

import "errors"

var (
	MessageSuccessGetRecipes           = "success get recipes"
	MessageSuccessGetRecipeDetail      = "success get recipe detail"
	MessageSuccessCreateRecipe         = "recipe created successfully"
	MessageSuccessUpdateRecipe         = "recipe updated successfully"
	MessageSuccessDeleteRecipe         = "recipe deleted successfully"
	MessageSuccessAddToFavorites       = "recipe added to favorites"
	MessageSuccessAddToShoppingCart    = "recipe added to shopping cart"
	MessageSuccessGetShortLink         = "success get short link"
	MessageSuccessRemoveFromCollection = "recipe removed successfully"

	MessageFailedGetRecipes           = "failed to get recipes"
	MessageFailedGetRecipeDetail      = "failed to get recipe detail"
	MessageFailedCreateRecipe         = "failed to create recipe"
	MessageFailedUpdateRecipe         = "failed to update recipe"
	MessageFailedDeleteRecipe         = "failed to delete recipe"
	MessageFailedAddRelation          = "failed to add recipe"
	MessageFailedRemoveRelation       = "failed to remove recipe"
	MessageFailedGetShortLink         = "failed to get short link"
	MessageFailedDownloadShoppingCart = "failed to download shopping cart"

	ErrRecipeNotFound           = newError(ErrNotFound, "recipe not found")
	ErrShortLinkNotFound        = newError(ErrNotFound, "short link not found")
	ErrUnauthorizedRecipeAccess = newError(ErrForbidden, "only the author can change this recipe")
	ErrAlreadyInFavorites       = newError(ErrConflict, "recipe is already in favorites")
	ErrAlreadyInShoppingCart    = newError(ErrConflict, "recipe is already in the shopping cart")
	ErrNotInFavorites           = newError(ErrNotFound, "recipe is not in favorites")
	ErrNotInShoppingCart        = newError(ErrNotFound, "recipe is not in the shopping cart")
	ErrInvalidRelationKind      = newError(ErrValidation, "invalid relation type")

	// ErrShortLinkGeneration is a server-side failure: the generated token
	// collided with an existing one.
	ErrShortLinkGeneration = errors.New("failed to generate a unique short link")
)

const ShoppingListHeader = "Shopping list:"

// RelationKind selects one of the per-user recipe marker tables.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationShoppingCart RelationKind = "shopping_cart"
)

func (k RelationKind) Valid() bool {
	return k == RelationFavorite || k == RelationShoppingCart
}

func (k RelationKind) ErrExists() error {
	if k == RelationShoppingCart {
		return ErrAlreadyInShoppingCart
	}
	return ErrAlreadyInFavorites
}

func (k RelationKind) ErrMissing() error {
	if k == RelationShoppingCart {
		return ErrNotInShoppingCart
	}
	return ErrNotInFavorites
}

type (
	RecipeIngredientRequest struct {
		ID     string `json:"id"`
		Amount int    `json:"amount"`
	}

	// RecipeRequest is the create/update payload. Pointer and nil-slice
	// fields distinguish "absent" from "empty" for partial updates.
	RecipeRequest struct {
		Name        *string                   `json:"name"`
		Text        *string                   `json:"text"`
		CookingTime *int                      `json:"cooking_time"`
		Image       *string                   `json:"image"`
		Tags        []string                  `json:"tags"`
		Ingredients []RecipeIngredientRequest `json:"ingredients"`
	}

	RecipeFilter struct {
		Tags             []string
		AuthorID         string
		IsFavorited      bool
		IsInShoppingCart bool
		PaginationRequest
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	Recipe struct {
		ID               string                     `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
	}

	RecipeMinified struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}

	ShoppingListItem struct {
		Name            string
		MeasurementUnit string
		Total           int
	}
)
