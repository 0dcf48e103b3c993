package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/service"
	"github.com/noah-isme/admin-audit-api/internal/utils"
)

// ActivityHandler exposes the audit viewer endpoints.
type ActivityHandler struct {
	service service.ActivityQueryService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityQueryService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the audit viewer routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Delete("", h.bulkDelete)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
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

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}

	from, err := parseQueryTime(c, "from")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid from date")
	}
	to, err := parseQueryTime(c, "to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid to date")
	}

	req := dto.ActivityListRequest{
		Page:        page,
		PageSize:    pageSize,
		Category:    c.Query("category"),
		SubjectType: c.Query("subject_type"),
		From:        from,
		To:          to,
		Search:      c.Query("search"),
	}
	if events := c.Query("events"); events != "" {
		req.Events = splitAndTrim(events)
	}
	if actorID > 0 {
		req.ActorID = uint(actorID)
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity records")
	}

	return utils.SendSuccess(c, "activity records", response)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id, err := parsePathID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	record, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity record not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("id", id).Msg("failed to fetch activity record")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch activity record")
	}

	return utils.SendSuccess(c, "activity record", record)
}

func (h *ActivityHandler) bulkDelete(c *fiber.Ctx) error {
	var payload dto.ActivityBulkDeleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	deleted, err := h.service.BulkDelete(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, "invalid payload", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete activity records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete activity records")
	}

	return utils.SendSuccess(c, "activity records deleted", fiber.Map{"deleted": deleted})
}
