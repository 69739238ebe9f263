//go:build integration

package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/testinfra"
	"Foodgram-Backend/pkg/catalog"
	"Foodgram-Backend/pkg/user"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type postgresEnv struct {
	db      *gorm.DB
	repo    RecipeRepository
	service RecipeService
	author  *entities.User
	reader  *entities.User
	tags    []*entities.Tag
	flour   *entities.Ingredient
	milk    *entities.Ingredient
}

func newPostgresEnv(t *testing.T) *postgresEnv {
	t.Helper()
	ctx := context.Background()
	db := testinfra.NewPostgres(t)

	users := user.NewUserRepository(db)
	author := &entities.User{Email: "chef@example.com", Username: "chef", FirstName: "C", LastName: "Hef", Password: "x"}
	reader := &entities.User{Email: "reader@example.com", Username: "reader", FirstName: "R", LastName: "Eader", Password: "x"}
	require.NoError(t, users.CreateUser(ctx, author))
	require.NoError(t, users.CreateUser(ctx, reader))

	catalogRepo := catalog.NewCatalogRepository(db)
	breakfast := &entities.Tag{Name: "Breakfast", Slug: "breakfast"}
	dinner := &entities.Tag{Name: "Dinner", Slug: "dinner"}
	require.NoError(t, catalogRepo.CreateTag(ctx, breakfast))
	require.NoError(t, catalogRepo.CreateTag(ctx, dinner))

	flour := &entities.Ingredient{Name: "flour", MeasurementUnit: "g"}
	milk := &entities.Ingredient{Name: "milk", MeasurementUnit: "ml"}
	_, err := catalogRepo.FirstOrCreateIngredient(ctx, flour)
	require.NoError(t, err)
	_, err = catalogRepo.FirstOrCreateIngredient(ctx, milk)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := NewRecipeRepository(db)

	return &postgresEnv{
		db:      db,
		repo:    repo,
		service: NewRecipeService(repo, catalogRepo, &fakeSubscriptions{edges: map[[2]uuid.UUID]bool{}}, &fakeStorage{}, log, Options{AppURL: "https://foodgram.example"}),
		author:  author,
		reader:  reader,
		tags:    []*entities.Tag{breakfast, dinner},
		flour:   flour,
		milk:    milk,
	}
}

func (env *postgresEnv) create(t *testing.T, name string, tag *entities.Tag, lines ...domain.RecipeIngredientRequest) domain.Recipe {
	t.Helper()
	res, err := env.service.CreateRecipe(context.Background(), domain.RecipeRequest{
		Name:        strPtr(name),
		Text:        strPtr("Cook it."),
		CookingTime: intPtr(15),
		Image:       strPtr(pngDataURI),
		Tags:        []string{tag.ID.String()},
		Ingredients: lines,
	}, env.author.ID.String())
	require.NoError(t, err)
	return res
}

func TestPostgres_RecipeLifecycle(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()

	created := env.create(t, "Pancakes", env.tags[0],
		domain.RecipeIngredientRequest{ID: env.milk.ID.String(), Amount: 300},
		domain.RecipeIngredientRequest{ID: env.flour.ID.String(), Amount: 200},
	)
	require.Len(t, created.Ingredients, 2)
	assert.Equal(t, "flour", created.Ingredients[0].Name)
	assert.Equal(t, "chef", created.Author.Username)

	updated, err := env.service.UpdateRecipe(ctx, created.ID, domain.RecipeRequest{
		Tags:        []string{env.tags[1].ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{{ID: env.milk.ID.String(), Amount: 10}},
	}, env.author.ID.String(), true)
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 10, updated.Ingredients[0].Amount)

	_, err = env.service.AddRelation(ctx, domain.RelationFavorite, created.ID, env.reader.ID.String())
	require.NoError(t, err)
	_, err = env.service.AddRelation(ctx, domain.RelationFavorite, created.ID, env.reader.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyInFavorites)

	require.NoError(t, env.service.DeleteRecipe(ctx, created.ID, env.author.ID.String()))

	var lines, favorites int64
	require.NoError(t, env.db.Model(&entities.RecipeIngredient{}).Count(&lines).Error)
	require.NoError(t, env.db.Model(&entities.Favorite{}).Count(&favorites).Error)
	assert.Zero(t, lines)
	assert.Zero(t, favorites)
}

func TestPostgres_DuplicateRelationIsTranslated(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()
	created := env.create(t, "Soup", env.tags[1], domain.RecipeIngredientRequest{ID: env.milk.ID.String(), Amount: 1})
	recipeID := uuid.MustParse(created.ID)

	require.NoError(t, env.repo.AddRelation(ctx, domain.RelationShoppingCart, env.reader.ID, recipeID))
	err := env.repo.AddRelation(ctx, domain.RelationShoppingCart, env.reader.ID, recipeID)

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPostgres_FiltersAndFlags(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()
	pancakes := env.create(t, "Pancakes", env.tags[0], domain.RecipeIngredientRequest{ID: env.flour.ID.String(), Amount: 1})
	env.create(t, "Soup", env.tags[1], domain.RecipeIngredientRequest{ID: env.milk.ID.String(), Amount: 1})

	_, err := env.service.AddRelation(ctx, domain.RelationShoppingCart, pancakes.ID, env.reader.ID.String())
	require.NoError(t, err)

	page := domain.PaginationRequest{Page: 1, Limit: 10}

	all, count, err := env.service.GetRecipes(ctx, domain.RecipeFilter{PaginationRequest: page}, env.reader.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, "Soup", all[0].Name, "newest first")

	tagged, count, err := env.service.GetRecipes(ctx, domain.RecipeFilter{Tags: []string{"breakfast", "lunch"}, PaginationRequest: page}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, pancakes.ID, tagged[0].ID)

	inCart, _, err := env.service.GetRecipes(ctx, domain.RecipeFilter{IsInShoppingCart: true, PaginationRequest: page}, env.reader.ID.String())
	require.NoError(t, err)
	require.Len(t, inCart, 1)
	assert.True(t, inCart[0].IsInShoppingCart)

	limited, err := env.repo.GetRecipesByAuthors(ctx, []uuid.UUID{env.author.ID}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Soup", limited[0].Name)

	counts, err := env.repo.CountRecipesByAuthors(ctx, []uuid.UUID{env.author.ID, env.reader.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[env.author.ID])
	assert.Zero(t, counts[env.reader.ID])
}

func TestPostgres_ShoppingListAggregates(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()
	a := env.create(t, "Bread", env.tags[0], domain.RecipeIngredientRequest{ID: env.flour.ID.String(), Amount: 200})
	b := env.create(t, "Cake", env.tags[0],
		domain.RecipeIngredientRequest{ID: env.flour.ID.String(), Amount: 300},
		domain.RecipeIngredientRequest{ID: env.milk.ID.String(), Amount: 200},
	)
	for _, id := range []string{a.ID, b.ID} {
		_, err := env.service.AddRelation(ctx, domain.RelationShoppingCart, id, env.reader.ID.String())
		require.NoError(t, err)
	}

	list, err := env.service.DownloadShoppingList(ctx, env.reader.ID.String())

	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\nflour (g) - 500\nmilk (ml) - 200\n", list)
}

func TestPostgres_ShortLink(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()
	created := env.create(t, "Soup", env.tags[1], domain.RecipeIngredientRequest{ID: env.milk.ID.String(), Amount: 1})

	first, err := env.service.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	second, err := env.service.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	token := first.ShortLink[len("https://foodgram.example/s/"):]
	id, err := env.service.ResolveShortLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	assigned, err := env.repo.AssignShortLink(ctx, uuid.MustParse(created.ID), "Other1")
	require.NoError(t, err)
	assert.False(t, assigned)
}
