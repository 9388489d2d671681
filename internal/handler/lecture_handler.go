package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// LectureHandler exposes lecture, invite and child registration endpoints.
type LectureHandler struct {
	service service.LectureService
	logger  zerolog.Logger
}

// NewLectureHandler constructs a lecture handler.
func NewLectureHandler(service service.LectureService, logger zerolog.Logger) *LectureHandler {
	return &LectureHandler{
		service: service,
		logger:  logger.With().Str("component", "lecture_handler").Logger(),
	}
}

// RegisterPublic exposes invite lookups so parents can sign up from an emailed link.
func (h *LectureHandler) RegisterPublic(router fiber.Router) {
	router.Get("/invites/:token", h.getInvite)
}

// Register mounts authenticated lecture routes.
func (h *LectureHandler) Register(router fiber.Router) {
	admin := middleware.AuthOptions{Roles: []string{models.RoleAdmin}}
	parent := middleware.AuthOptions{Roles: []string{models.RoleParent}}

	router.Get("/lectures", middleware.WithAuth(h.listMine, admin))
	router.Post("/lectures", middleware.WithAuth(h.create, admin))
	router.Get("/lectures/invited", middleware.WithAuth(h.listInvited, parent))
	router.Post("/lectures/:id/invites", middleware.WithAuth(h.createInvite, admin))
	router.Get("/lectures/:id/invites", middleware.WithAuth(h.listInvites, admin))
	router.Post("/lectures/:id/children", middleware.WithAuth(h.addChild, parent))
	router.Get("/lectures/:id/children", middleware.WithAuth(h.listChildren, parent))
}

func (h *LectureHandler) create(c *fiber.Ctx) error {
	var payload dto.LectureCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var image *multipart.FileHeader
	if file, err := c.FormFile("image"); err == nil {
		image = file
	}

	lecture, err := h.service.Create(c.UserContext(), actorFromContext(c), payload, image)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "lecture created", lecture)
}

func (h *LectureHandler) listMine(c *fiber.Ctx) error {
	lectures, err := h.service.ListMine(c.UserContext(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lectures retrieved", lectures)
}

func (h *LectureHandler) createInvite(c *fiber.Ctx) error {
	lectureID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InviteCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	invite, err := h.service.CreateInvite(c.UserContext(), actorFromContext(c), lectureID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "invite created", invite)
}

func (h *LectureHandler) listInvites(c *fiber.Ctx) error {
	lectureID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	invites, err := h.service.ListInvites(c.UserContext(), actorFromContext(c), lectureID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "invites retrieved", invites)
}

func (h *LectureHandler) getInvite(c *fiber.Ctx) error {
	invite, err := h.service.GetInvite(c.UserContext(), c.Params("token"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "invite retrieved", invite)
}

func (h *LectureHandler) listInvited(c *fiber.Ctx) error {
	lectures, err := h.service.ListInvited(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lectures retrieved", lectures)
}

func (h *LectureHandler) addChild(c *fiber.Ctx) error {
	lectureID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChildCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	child, err := h.service.AddChild(c.UserContext(), userIDFromContext(c), lectureID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "child registered", child)
}

func (h *LectureHandler) listChildren(c *fiber.Ctx) error {
	lectureID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	children, err := h.service.ListChildren(c.UserContext(), userIDFromContext(c), lectureID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "children retrieved", children)
}

func (h *LectureHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLectureNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lecture not found")
	case errors.Is(err, service.ErrInviteNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "invite not found")
	case errors.Is(err, service.ErrLectureForbidden), errors.Is(err, service.ErrInviteRequired):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrChildExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrImageInvalid):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrUploadUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return respondDomainError(c, h.logger, err)
	}
}
