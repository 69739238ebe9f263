package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/user"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserService struct {
	user.UserService

	registered int
	err        error
}

func (s *stubUserService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	s.registered++
	if s.err != nil {
		return domain.RegisterResponse{}, s.err
	}
	return domain.RegisterResponse{ID: "u1", Email: req.Email, Username: req.Username}, nil
}

func newUserTestApp(service *stubUserService) *fiber.App {
	utils.InitValidator()
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewUserHandler(service, utils.Validate, log, 6)

	app := fiber.New()
	app.Post("/api/users", h.Register)
	app.Post("/api/auth/token/logout", h.Logout)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRegister_Created(t *testing.T) {
	service := &stubUserService{}
	app := newUserTestApp(service)

	status := postJSON(t, app, "/api/users", `{"email":"chef@example.com","username":"chef","first_name":"A","last_name":"B","password":"long-enough"}`)

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 1, service.registered)
}

func TestRegister_InvalidPayloadSkipsService(t *testing.T) {
	service := &stubUserService{}
	app := newUserTestApp(service)

	status := postJSON(t, app, "/api/users", `{"email":"nope","username":"chef"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Zero(t, service.registered)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newUserTestApp(&stubUserService{err: domain.ErrEmailAlreadyExists})

	status := postJSON(t, app, "/api/users", `{"email":"chef@example.com","username":"chef","first_name":"A","last_name":"B","password":"long-enough"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLogout(t *testing.T) {
	app := newUserTestApp(&stubUserService{})

	status := postJSON(t, app, "/api/auth/token/logout", ``)

	assert.Equal(t, fiber.StatusNoContent, status)
}
