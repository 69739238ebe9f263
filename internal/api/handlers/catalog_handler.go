package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/pkg/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	CatalogHandler interface {
		GetTags(c *fiber.Ctx) error
		GetTag(c *fiber.Ctx) error
		GetIngredients(c *fiber.Ctx) error
		GetIngredient(c *fiber.Ctx) error
	}

	catalogHandler struct {
		catalogService catalog.CatalogService
		log            *logrus.Logger
	}
)

func NewCatalogHandler(catalogService catalog.CatalogService, log *logrus.Logger) CatalogHandler {
	return &catalogHandler{
		catalogService: catalogService,
		log:            log,
	}
}

func (h *catalogHandler) GetTags(c *fiber.Ctx) error {
	res, err := h.catalogService.GetTags(c.Context())
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetTags, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *catalogHandler) GetTag(c *fiber.Ctx) error {
	res, err := h.catalogService.GetTag(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetTag, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTag)
}

// GetIngredients filters by case-insensitive name prefix (?name=) and is
// not paginated.
func (h *catalogHandler) GetIngredients(c *fiber.Ctx) error {
	res, err := h.catalogService.SearchIngredients(c.Context(), c.Query("name"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetIngredients, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *catalogHandler) GetIngredient(c *fiber.Ctx) error {
	res, err := h.catalogService.GetIngredient(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetIngredient, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredient)
}
