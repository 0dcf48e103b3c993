package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/middleware"
	"github.com/noah-isme/admin-audit-api/internal/service"
	"github.com/noah-isme/admin-audit-api/internal/utils"
)

// UserHandler exposes user management endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user management routes to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/restore", h.restore)
	router.Delete("/:id/force", h.forceDelete)
}

func actionContext(c *fiber.Ctx) service.ActionContext {
	return service.ActionContext{
		Actor:   middleware.ActorFromContext(c),
		Request: middleware.RequestMetaFromContext(c),
	}
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	req := dto.UserListRequest{
		Page:           page,
		PageSize:       pageSize,
		Search:         c.Query("search"),
		Role:           c.Query("role"),
		IncludeDeleted: strings.EqualFold(c.Query("include_deleted"), "true"),
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users", response)
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Create(c.Context(), actionContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, "invalid payload", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	user, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("id", id).Msg("failed to fetch user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch user")
	}

	return utils.SendSuccess(c, "user", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Update(c.Context(), actionContext(c), id, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, "invalid payload", validationDetails(err))
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("id", id).Msg("failed to update user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user")
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := h.service.Delete(c.Context(), actionContext(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("id", id).Msg("failed to delete user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete user")
	}

	return utils.SendSuccess(c, "user deleted", nil)
}

func (h *UserHandler) restore(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	user, err := h.service.Restore(c.Context(), actionContext(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found or not deleted")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("id", id).Msg("failed to restore user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to restore user")
	}

	return utils.SendSuccess(c, "user restored", user)
}

func (h *UserHandler) forceDelete(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := h.service.ForceDelete(c.Context(), actionContext(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("id", id).Msg("failed to permanently delete user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to permanently delete user")
	}

	return utils.SendSuccess(c, "user permanently deleted", nil)
}
