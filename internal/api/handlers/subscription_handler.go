package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/subscription"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	SubscriptionHandler interface {
		Subscribe(c *fiber.Ctx) error
		Unsubscribe(c *fiber.Ctx) error
		GetSubscriptions(c *fiber.Ctx) error
	}

	subscriptionHandler struct {
		subscriptionService subscription.SubscriptionService
		log                 *logrus.Logger
		pageSize            int
	}
)

func NewSubscriptionHandler(subscriptionService subscription.SubscriptionService, log *logrus.Logger, pageSize int) SubscriptionHandler {
	return &subscriptionHandler{
		subscriptionService: subscriptionService,
		log:                 log,
		pageSize:            pageSize,
	}
}

func (h *subscriptionHandler) Subscribe(c *fiber.Ctx) error {
	res, err := h.subscriptionService.Subscribe(c.Context(), currentUserID(c), c.Params("id"), c.Query("recipes_limit"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedSubscribe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubscribe)
}

func (h *subscriptionHandler) Unsubscribe(c *fiber.Ctx) error {
	if err := h.subscriptionService.Unsubscribe(c.Context(), currentUserID(c), c.Params("id")); err != nil {
		return errorResponse(c, h.log, domain.MessageFailedUnsubscribe, err)
	}
	return presenters.NoContent(c)
}

func (h *subscriptionHandler) GetSubscriptions(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c.Query("page"), c.Query("limit"), h.pageSize)

	subscriptions, count, err := h.subscriptionService.GetSubscriptions(c.Context(), currentUserID(c), pagination, c.Query("recipes_limit"))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetSubscriptions, err)
	}

	res := utils.Paginate(requestURL(c), pagination, count, subscriptions)
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSubscriptions)
}
