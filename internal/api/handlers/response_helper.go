package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// StatusFromError maps domain errors to HTTP status codes. Removing a
// relation or subscription that does not exist is a 400, not a 404.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotInFavorites),
		errors.Is(err, domain.ErrNotInShoppingCart),
		errors.Is(err, domain.ErrSubscriptionNotFound):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrParseUUID),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenNotFound):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// errorResponse logs unexpected failures and hides their details from the
// client.
func errorResponse(c *fiber.Ctx, log *logrus.Logger, message string, err error) error {
	status := StatusFromError(err)
	if status == fiber.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error(message)
		return presenters.ErrorResponse(c, status, message, errors.New(domain.MessageInternalError))
	}
	return presenters.ErrorResponse(c, status, message, err)
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func requestURL(c *fiber.Ctx) string {
	return c.BaseURL() + c.OriginalURL()
}

func queryFlag(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
