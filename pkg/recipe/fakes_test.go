package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeCatalog is an in-memory catalog.CatalogRepository.
type fakeCatalog struct {
	tags        map[uuid.UUID]*entities.Tag
	ingredients map[uuid.UUID]*entities.Ingredient
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tags:        map[uuid.UUID]*entities.Tag{},
		ingredients: map[uuid.UUID]*entities.Ingredient{},
	}
}

func (f *fakeCatalog) addTag(name, slug string) *entities.Tag {
	tag := &entities.Tag{ID: uuid.New(), Name: name, Slug: slug}
	f.tags[tag.ID] = tag
	return tag
}

func (f *fakeCatalog) addIngredient(name, unit string) *entities.Ingredient {
	ingredient := &entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	f.ingredients[ingredient.ID] = ingredient
	return ingredient
}

func (f *fakeCatalog) GetTags(ctx context.Context) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	for _, tag := range f.tags {
		tags = append(tags, tag)
	}
	return tags, nil
}

func (f *fakeCatalog) GetTagByID(ctx context.Context, id uuid.UUID) (*entities.Tag, error) {
	if tag, ok := f.tags[id]; ok {
		return tag, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalog) GetTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (f *fakeCatalog) TagSlugExists(ctx context.Context, slug string) (bool, error) {
	for _, tag := range f.tags {
		if tag.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCatalog) CreateTag(ctx context.Context, tag *entities.Tag) error {
	tag.ID = uuid.New()
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeCatalog) SearchIngredients(ctx context.Context, prefix string) ([]*entities.Ingredient, error) {
	var res []*entities.Ingredient
	for _, ingredient := range f.ingredients {
		res = append(res, ingredient)
	}
	return res, nil
}

func (f *fakeCatalog) GetIngredientByID(ctx context.Context, id uuid.UUID) (*entities.Ingredient, error) {
	if ingredient, ok := f.ingredients[id]; ok {
		return ingredient, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalog) GetIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Ingredient, error) {
	var res []*entities.Ingredient
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			res = append(res, ingredient)
		}
	}
	return res, nil
}

func (f *fakeCatalog) FirstOrCreateIngredient(ctx context.Context, ingredient *entities.Ingredient) (bool, error) {
	for _, existing := range f.ingredients {
		if existing.Name == ingredient.Name && existing.MeasurementUnit == ingredient.MeasurementUnit {
			*ingredient = *existing
			return false, nil
		}
	}
	ingredient.ID = uuid.New()
	f.ingredients[ingredient.ID] = ingredient
	return true, nil
}

type relationKey struct {
	kind     domain.RelationKind
	userID   uuid.UUID
	recipeID uuid.UUID
}

type fakeState struct {
	recipes   map[uuid.UUID]entities.Recipe
	tags      map[uuid.UUID][]uuid.UUID
	lines     map[uuid.UUID][]entities.RecipeIngredient
	relations map[relationKey]bool
}

func (s fakeState) clone() fakeState {
	c := fakeState{
		recipes:   make(map[uuid.UUID]entities.Recipe, len(s.recipes)),
		tags:      make(map[uuid.UUID][]uuid.UUID, len(s.tags)),
		lines:     make(map[uuid.UUID][]entities.RecipeIngredient, len(s.lines)),
		relations: make(map[relationKey]bool, len(s.relations)),
	}
	for k, v := range s.recipes {
		c.recipes[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = append([]uuid.UUID(nil), v...)
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entities.RecipeIngredient(nil), v...)
	}
	for k, v := range s.relations {
		c.relations[k] = v
	}
	return c
}

// fakeRecipes is an in-memory RecipeRepository. Transaction restores the
// previous state when fn fails.
type fakeRecipes struct {
	mu      sync.Mutex
	state   fakeState
	catalog *fakeCatalog
	users   map[uuid.UUID]*entities.User

	failReplaceIngredients error
	duplicateOnAddRelation bool
	// onAssignShortLink runs before AssignShortLink writes, to simulate a
	// concurrent writer.
	onAssignShortLink func(id uuid.UUID)
}

func newFakeRecipes(catalog *fakeCatalog) *fakeRecipes {
	return &fakeRecipes{
		state: fakeState{
			recipes:   map[uuid.UUID]entities.Recipe{},
			tags:      map[uuid.UUID][]uuid.UUID{},
			lines:     map[uuid.UUID][]entities.RecipeIngredient{},
			relations: map[relationKey]bool{},
		},
		catalog: catalog,
		users:   map[uuid.UUID]*entities.User{},
	}
}

func (f *fakeRecipes) addUser(username string) *entities.User {
	user := &entities.User{
		ID:        uuid.New(),
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeRecipes) Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error {
	snapshot := f.state.clone()
	if err := fn(f); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeRecipes) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	recipe.ID = uuid.New()
	f.state.recipes[recipe.ID] = *recipe
	return nil
}

func (f *fakeRecipes) UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	if _, ok := f.state.recipes[recipe.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.state.recipes[recipe.ID] = *recipe
	return nil
}

func (f *fakeRecipes) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.state.recipes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.state.recipes, id)
	delete(f.state.tags, id)
	delete(f.state.lines, id)
	for key := range f.state.relations {
		if key.recipeID == id {
			delete(f.state.relations, key)
		}
	}
	return nil
}

func (f *fakeRecipes) ReplaceTags(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag) error {
	ids := make([]uuid.UUID, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	f.state.tags[recipe.ID] = ids
	return nil
}

func (f *fakeRecipes) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []*entities.RecipeIngredient) error {
	delete(f.state.lines, recipeID)
	if f.failReplaceIngredients != nil {
		return f.failReplaceIngredients
	}
	for _, line := range lines {
		line.RecipeID = recipeID
		f.state.lines[recipeID] = append(f.state.lines[recipeID], *line)
	}
	return nil
}

func (f *fakeRecipes) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.state.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &recipe, nil
}

func (f *fakeRecipes) GetRecipeDetail(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	recipe, ok := f.state.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.detail(recipe), nil
}

func (f *fakeRecipes) detail(recipe entities.Recipe) *entities.Recipe {
	recipe.Author = f.users[recipe.AuthorID]
	recipe.Tags = nil
	for _, id := range f.state.tags[recipe.ID] {
		recipe.Tags = append(recipe.Tags, f.catalog.tags[id])
	}
	recipe.Ingredients = nil
	for _, line := range f.state.lines[recipe.ID] {
		line := line
		line.Ingredient = f.catalog.ingredients[line.IngredientID]
		recipe.Ingredients = append(recipe.Ingredients, &line)
	}
	return &recipe
}

func (f *fakeRecipes) GetRecipes(ctx context.Context, query RecipeQuery) ([]*entities.Recipe, int64, error) {
	var matched []*entities.Recipe
	for _, recipe := range f.state.recipes {
		if query.AuthorID != nil && recipe.AuthorID != *query.AuthorID {
			continue
		}
		if query.FavoritedBy != nil && !f.state.relations[relationKey{domain.RelationFavorite, *query.FavoritedBy, recipe.ID}] {
			continue
		}
		if query.InCartOf != nil && !f.state.relations[relationKey{domain.RelationShoppingCart, *query.InCartOf, recipe.ID}] {
			continue
		}
		if len(query.TagSlugs) > 0 && !f.hasAnyTag(recipe.ID, query.TagSlugs) {
			continue
		}
		matched = append(matched, f.detail(recipe))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	count := int64(len(matched))
	if query.Offset >= len(matched) {
		return []*entities.Recipe{}, count, nil
	}
	end := query.Offset + query.Limit
	if query.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[query.Offset:end], count, nil
}

func (f *fakeRecipes) hasAnyTag(recipeID uuid.UUID, slugs []string) bool {
	for _, id := range f.state.tags[recipeID] {
		for _, slug := range slugs {
			if f.catalog.tags[id].Slug == slug {
				return true
			}
		}
	}
	return false
}

func (f *fakeRecipes) GetRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID, perAuthor int) ([]*entities.Recipe, error) {
	return nil, errors.New("not used")
}

func (f *fakeRecipes) CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return nil, errors.New("not used")
}

func (f *fakeRecipes) ShortLinkExists(ctx context.Context, link string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, recipe := range f.state.recipes {
		if recipe.ShortLink != nil && *recipe.ShortLink == link {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRecipes) AssignShortLink(ctx context.Context, id uuid.UUID, link string) (bool, error) {
	if f.onAssignShortLink != nil {
		f.onAssignShortLink(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.state.recipes[id]
	if !ok || recipe.ShortLink != nil {
		return false, nil
	}
	recipe.ShortLink = &link
	f.state.recipes[id] = recipe
	return true, nil
}

func (f *fakeRecipes) GetRecipeIDByShortLink(ctx context.Context, link string) (uuid.UUID, error) {
	for id, recipe := range f.state.recipes {
		if recipe.ShortLink != nil && *recipe.ShortLink == link {
			return id, nil
		}
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

func (f *fakeRecipes) RelationExists(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) (bool, error) {
	return f.state.relations[relationKey{kind, userID, recipeID}], nil
}

func (f *fakeRecipes) AddRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) error {
	key := relationKey{kind, userID, recipeID}
	if f.duplicateOnAddRelation || f.state.relations[key] {
		return gorm.ErrDuplicatedKey
	}
	f.state.relations[key] = true
	return nil
}

func (f *fakeRecipes) RemoveRelation(ctx context.Context, kind domain.RelationKind, userID, recipeID uuid.UUID) (int64, error) {
	key := relationKey{kind, userID, recipeID}
	if !f.state.relations[key] {
		return 0, nil
	}
	delete(f.state.relations, key)
	return 1, nil
}

func (f *fakeRecipes) GetRelationFlags(ctx context.Context, kind domain.RelationKind, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	flags := map[uuid.UUID]bool{}
	for _, id := range recipeIDs {
		if f.state.relations[relationKey{kind, userID, id}] {
			flags[id] = true
		}
	}
	return flags, nil
}

func (f *fakeRecipes) GetShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error) {
	type group struct{ name, unit string }
	totals := map[group]int{}
	for key := range f.state.relations {
		if key.kind != domain.RelationShoppingCart || key.userID != userID {
			continue
		}
		for _, line := range f.state.lines[key.recipeID] {
			ingredient := f.catalog.ingredients[line.IngredientID]
			totals[group{ingredient.Name, ingredient.MeasurementUnit}] += line.Amount
		}
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for g, total := range totals {
		items = append(items, domain.ShoppingListItem{Name: g.name, MeasurementUnit: g.unit, Total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

// fakeSubscriptions is an in-memory user.SubscriptionLookup.
type fakeSubscriptions struct {
	edges map[[2]uuid.UUID]bool
}

func (f *fakeSubscriptions) GetSubscribedAuthorIDs(ctx context.Context, subscriberID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	res := map[uuid.UUID]bool{}
	for _, id := range authorIDs {
		if f.edges[[2]uuid.UUID{subscriberID, id}] {
			res[id] = true
		}
	}
	return res, nil
}

// fakeStorage records uploads and deletions.
type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadFile(ctx context.Context, fileName string, data []byte, folder string, allowed ...string) (string, error) {
	key := folder + "/" + fileName + ".png"
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeStorage) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.example.com/" + objectKey
}

func (f *fakeStorage) GetObjectKeyFromLink(link string) string {
	const prefix = "https://cdn.example.com/"
	if len(link) <= len(prefix) || link[:len(prefix)] != prefix {
		return ""
	}
	return link[len(prefix):]
}
