package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// AdminActivityHandler exposes the audit trail of grading and enrollment actions.
type AdminActivityHandler struct {
	service   service.ActivityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(service service.ActivityService, validator *validator.Validate, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("/admin/activities", middleware.RequireRole(models.RoleAdmin), h.list)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, err := parsePage(c, h.validator)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	actorID, err := parseQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ActivityListRequest{
		PageRequest: page,
		Action:      c.Query("action"),
		EntityType:  c.Query("entity_type"),
	}
	if actorID != nil {
		req.ActorID = *actorID
	}

	entityID, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if entityID != nil {
		req.EntityID = *entityID
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, service.ErrEntityTypeRequired) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return respondDomainError(c, h.logger, err)
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}
