package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/pkg/recipe"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecipeService implements the calls exercised here; the rest panic
// through the nil embedded interface.
type stubRecipeService struct {
	recipe.RecipeService

	lastFilter domain.RecipeFilter
	lastViewer string
	err        error
	list       string
	recipeID   string
}

func (s *stubRecipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) ([]domain.Recipe, int64, error) {
	s.lastFilter = filter
	s.lastViewer = viewerID
	if s.err != nil {
		return nil, 0, s.err
	}
	return []domain.Recipe{{ID: "r1", Name: "Soup"}}, 9, nil
}

func (s *stubRecipeService) GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.Recipe, error) {
	return domain.Recipe{}, s.err
}

func (s *stubRecipeService) CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (domain.Recipe, error) {
	return domain.Recipe{}, s.err
}

func (s *stubRecipeService) RemoveRelation(ctx context.Context, kind domain.RelationKind, recipeID string, userID string) error {
	return s.err
}

func (s *stubRecipeService) DownloadShoppingList(ctx context.Context, userID string) (string, error) {
	return s.list, s.err
}

func (s *stubRecipeService) ResolveShortLink(ctx context.Context, token string) (string, error) {
	return s.recipeID, s.err
}

func newRecipeTestApp(service *stubRecipeService) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewRecipeHandler(service, log, 6)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-Test-User"))
		return c.Next()
	})
	app.Get("/api/recipes", h.GetRecipes)
	app.Post("/api/recipes", h.CreateRecipe)
	app.Get("/api/recipes/download_shopping_cart", h.DownloadShoppingCart)
	app.Get("/api/recipes/:id", h.GetRecipe)
	app.Delete("/api/recipes/:id/favorite", h.RemoveFromFavorites)
	app.Get("/s/:link", h.RedirectShortLink)
	return app
}

func decodeError(t *testing.T, body io.Reader) presenters.ErrorBody {
	t.Helper()
	var res presenters.ErrorBody
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("name", "this field is required"), fiber.StatusBadRequest},
		{domain.ErrAlreadyInFavorites, fiber.StatusBadRequest},
		{domain.ErrNotInShoppingCart, fiber.StatusBadRequest},
		{domain.ErrSubscriptionNotFound, fiber.StatusBadRequest},
		{domain.ErrSelfSubscription, fiber.StatusBadRequest},
		{domain.ErrRecipeNotFound, fiber.StatusNotFound},
		{domain.ErrUserNotFound, fiber.StatusNotFound},
		{domain.ErrUnauthorizedRecipeAccess, fiber.StatusForbidden},
		{domain.ErrParseUUID, fiber.StatusUnauthorized},
		{domain.ErrTokenExpired, fiber.StatusUnauthorized},
		{domain.ErrShortLinkGeneration, fiber.StatusInternalServerError},
		{errors.New("db down"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromError(tt.err), tt.err.Error())
	}
}

func TestGetRecipes_ParsesFilterAndPaginates(t *testing.T) {
	service := &stubRecipeService{}
	app := newRecipeTestApp(service)

	req := httptest.NewRequest(fiber.MethodGet, "/api/recipes?tags=breakfast&tags=dinner&is_favorited=1&is_in_shopping_cart=0&author=a1&limit=3", nil)
	req.Header.Set("X-Test-User", "viewer-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"breakfast", "dinner"}, service.lastFilter.Tags)
	assert.True(t, service.lastFilter.IsFavorited)
	assert.False(t, service.lastFilter.IsInShoppingCart)
	assert.Equal(t, "a1", service.lastFilter.AuthorID)
	assert.Equal(t, domain.PaginationRequest{Page: 1, Limit: 3}, service.lastFilter.PaginationRequest)
	assert.Equal(t, "viewer-1", service.lastViewer)

	var body struct {
		Data struct {
			Count    int64            `json:"count"`
			Next     *string          `json:"next"`
			Previous *string          `json:"previous"`
			Results  []map[string]any `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 9, body.Data.Count)
	require.NotNil(t, body.Data.Next)
	assert.Contains(t, *body.Data.Next, "page=2")
	assert.Nil(t, body.Data.Previous)
	assert.Len(t, body.Data.Results, 1)
}

func TestGetRecipe_NotFound(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{err: domain.ErrRecipeNotFound})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/recipes/abc", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decodeError(t, resp.Body)
	assert.False(t, body.Status)
	assert.Equal(t, "recipe not found", body.Error)
}

func TestCreateRecipe_ValidationErrorListsFields(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{err: domain.NewValidationError("tags", "at least one tag is required")})

	req := httptest.NewRequest(fiber.MethodPost, "/api/recipes", strings.NewReader(`{"name":"Soup"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp.Body)
	assert.Equal(t, map[string][]string{"tags": {"at least one tag is required"}}, body.Errors)
}

func TestCreateRecipe_MalformedBody(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{})

	req := httptest.NewRequest(fiber.MethodPost, "/api/recipes", strings.NewReader(`{"name":`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateRecipe_InternalErrorIsHidden(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{err: errors.New("pq: connection refused")})

	req := httptest.NewRequest(fiber.MethodPost, "/api/recipes", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, resp.Body)
	assert.Equal(t, domain.MessageInternalError, body.Error)
}

func TestRemoveFromFavorites_MissingRelationIsBadRequest(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{err: domain.ErrNotInFavorites})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/recipes/abc/favorite", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRemoveFromFavorites_NoContent(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/recipes/abc/favorite", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestDownloadShoppingCart(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{list: "Shopping list:\n\nflour (g) - 500\n"})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/recipes/download_shopping_cart", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, recipe.ShoppingListContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), recipe.ShoppingListFileName)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\nflour (g) - 500\n", string(body))
}

func TestRedirectShortLink(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{recipeID: "0b7c"})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/s/Ab3dE9", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/recipes/0b7c", resp.Header.Get(fiber.HeaderLocation))
}

func TestRedirectShortLink_Unknown(t *testing.T) {
	app := newRecipeTestApp(&stubRecipeService{err: domain.ErrShortLinkNotFound})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/s/nope00", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
