package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/recipe"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetRecipe(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		ReplaceRecipe(c *fiber.Ctx) error
		PatchRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		AddToFavorites(c *fiber.Ctx) error
		RemoveFromFavorites(c *fiber.Ctx) error
		AddToShoppingCart(c *fiber.Ctx) error
		RemoveFromShoppingCart(c *fiber.Ctx) error
		DownloadShoppingCart(c *fiber.Ctx) error
		GetShortLink(c *fiber.Ctx) error
		RedirectShortLink(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		log           *logrus.Logger
		pageSize      int
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, log *logrus.Logger, pageSize int) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		log:           log,
		pageSize:      pageSize,
	}
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c.Query("page"), c.Query("limit"), h.pageSize)

	filter := domain.RecipeFilter{
		AuthorID:          c.Query("author"),
		IsFavorited:       queryFlag(c, "is_favorited"),
		IsInShoppingCart:  queryFlag(c, "is_in_shopping_cart"),
		PaginationRequest: pagination,
	}
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		if len(slug) > 0 {
			filter.Tags = append(filter.Tags, string(slug))
		}
	}

	recipes, count, err := h.recipeService.GetRecipes(c.Context(), filter, currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetRecipes, err)
	}

	res := utils.Paginate(requestURL(c), pagination, count, recipes)
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipe(c *fiber.Ctx) error {
	res, err := h.recipeService.GetRecipe(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetRecipeDetail, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	var req domain.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.recipeService.CreateRecipe(c.Context(), req, currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedCreateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) ReplaceRecipe(c *fiber.Ctx) error {
	return h.updateRecipe(c, false)
}

func (h *recipeHandler) PatchRecipe(c *fiber.Ctx) error {
	return h.updateRecipe(c, true)
}

func (h *recipeHandler) updateRecipe(c *fiber.Ctx, partial bool) error {
	var req domain.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.Context(), c.Params("id"), req, currentUserID(c), partial)
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedUpdateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	if err := h.recipeService.DeleteRecipe(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return errorResponse(c, h.log, domain.MessageFailedDeleteRecipe, err)
	}
	return presenters.NoContent(c)
}

func (h *recipeHandler) AddToFavorites(c *fiber.Ctx) error {
	return h.addRelation(c, domain.RelationFavorite, domain.MessageSuccessAddToFavorites)
}

func (h *recipeHandler) RemoveFromFavorites(c *fiber.Ctx) error {
	return h.removeRelation(c, domain.RelationFavorite)
}

func (h *recipeHandler) AddToShoppingCart(c *fiber.Ctx) error {
	return h.addRelation(c, domain.RelationShoppingCart, domain.MessageSuccessAddToShoppingCart)
}

func (h *recipeHandler) RemoveFromShoppingCart(c *fiber.Ctx) error {
	return h.removeRelation(c, domain.RelationShoppingCart)
}

func (h *recipeHandler) addRelation(c *fiber.Ctx, kind domain.RelationKind, message string) error {
	res, err := h.recipeService.AddRelation(c.Context(), kind, c.Params("id"), currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedAddRelation, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, message)
}

func (h *recipeHandler) removeRelation(c *fiber.Ctx, kind domain.RelationKind) error {
	if err := h.recipeService.RemoveRelation(c.Context(), kind, c.Params("id"), currentUserID(c)); err != nil {
		return errorResponse(c, h.log, domain.MessageFailedRemoveRelation, err)
	}
	return presenters.NoContent(c)
}

func (h *recipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	list, err := h.recipeService.DownloadShoppingList(c.Context(), currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedDownloadShoppingCart, err)
	}

	c.Attachment(recipe.ShoppingListFileName)
	c.Set(fiber.HeaderContentType, recipe.ShoppingListContentType)
	return c.Status(fiber.StatusOK).SendString(list)
}

func (h *recipeHandler) GetShortLink(c *fiber.Ctx) error {
	res, err := h.recipeService.GetShortLink(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetShortLink, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetShortLink)
}

func (h *recipeHandler) RedirectShortLink(c *fiber.Ctx) error {
	recipeID, err := h.recipeService.ResolveShortLink(c.Context(), c.Params("link"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetShortLink, err)
	}
	return c.Redirect("/recipes/"+recipeID, fiber.StatusFound)
}
