package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	UserHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
		GetUsers(c *fiber.Ctx) error
		GetUser(c *fiber.Ctx) error
		SetPassword(c *fiber.Ctx) error
		UpdateAvatar(c *fiber.Ctx) error
		DeleteAvatar(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
		log         *logrus.Logger
		pageSize    int
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate, log *logrus.Logger, pageSize int) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
		log:         log,
		pageSize:    pageSize,
	}
}

func (h *userHandler) Register(c *fiber.Ctx) error {
	var req domain.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	res, err := h.userService.Register(c.Context(), req)
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedRegister, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.userService.Login(c.Context(), req)
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedLogin, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

// Logout is a no-op: tokens are stateless and expire on their own.
func (h *userHandler) Logout(c *fiber.Ctx) error {
	return presenters.NoContent(c)
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	res, err := h.userService.GetMe(c.Context(), currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) GetUsers(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c.Query("page"), c.Query("limit"), h.pageSize)

	users, count, err := h.userService.GetUsers(c.Context(), pagination, currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetUsers, err)
	}

	res := utils.Paginate(requestURL(c), pagination, count, users)
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUsers)
}

func (h *userHandler) GetUser(c *fiber.Ctx) error {
	res, err := h.userService.GetUser(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) SetPassword(c *fiber.Ctx) error {
	var req domain.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSetPassword, err)
	}

	if err := h.userService.SetPassword(c.Context(), currentUserID(c), req); err != nil {
		return errorResponse(c, h.log, domain.MessageFailedSetPassword, err)
	}
	return presenters.NoContent(c)
}

func (h *userHandler) UpdateAvatar(c *fiber.Ctx) error {
	var req domain.AvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateAvatar, err)
	}

	res, err := h.userService.UpdateAvatar(c.Context(), currentUserID(c), req)
	if err != nil {
		return errorResponse(c, h.log, domain.MessageFailedUpdateAvatar, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateAvatar)
}

func (h *userHandler) DeleteAvatar(c *fiber.Ctx) error {
	if err := h.userService.DeleteAvatar(c.Context(), currentUserID(c)); err != nil {
		return errorResponse(c, h.log, domain.MessageFailedDeleteAvatar, err)
	}
	return presenters.NoContent(c)
}
