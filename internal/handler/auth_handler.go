package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	service      service.AuthService
	validator    *validator.Validate
	loginLimiter fiber.Handler
	logger       zerolog.Logger
}

// NewAuthHandler constructs the auth handler. loginLimiter may be nil.
func NewAuthHandler(service service.AuthService, validator *validator.Validate, loginLimiter fiber.Handler, logger zerolog.Logger) *AuthHandler {
	if loginLimiter == nil {
		loginLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AuthHandler{
		service:      service,
		validator:    validator,
		loginLimiter: loginLimiter,
		logger:       logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/parent/signup-invite", h.signupWithInvite)
	auth.Post("/:role/register", h.register)
	auth.Post("/:role/login", h.loginLimiter, h.login)
}

// Register attaches routes that require a verified token.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/auth/logout", h.logout)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	role, ok := roleParam(c)
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "unknown role")
	}

	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Register(c.UserContext(), role, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "registration successful", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	role, ok := roleParam(c)
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "unknown role")
	}

	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.UserContext(), role, payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLogger(h.logger, c).Warn().Str("role", role).Msg("failed login attempt")
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) signupWithInvite(c *fiber.Ctx) error {
	var payload dto.InviteSignupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.SignupWithInvite(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "registration successful", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	tokenID, _ := c.Locals(middleware.LocalTokenID).(string)

	if err := h.service.Logout(c.UserContext(), tokenID, middleware.TokenExpiry(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInviteInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid or used invite")
	case errors.Is(err, service.ErrUnsupportedRole):
		return utils.SendError(c, fiber.StatusNotFound, "unknown role")
	default:
		return respondDomainError(c, h.logger, err)
	}
}

func roleParam(c *fiber.Ctx) (string, bool) {
	role := strings.ToLower(strings.TrimSpace(c.Params("role")))
	return role, models.IsValidRole(role)
}
