package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/middleware"
	"github.com/noah-isme/admin-audit-api/internal/service"
	"github.com/noah-isme/admin-audit-api/internal/utils"
)

// AuthHandler exposes registration, login and logout endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth routes. Logout additionally expects
// the JWT middleware to have populated the actor on the context.
func (h *AuthHandler) Register(public fiber.Router, protected fiber.Router) {
	public.Post("/register", h.register)
	public.Post("/login", h.login)
	protected.Post("/logout", h.logout)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Register(c.Context(), middleware.RequestMetaFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, "invalid payload", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to register user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to register user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registered", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.Context(), middleware.RequestMetaFromContext(c), payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		if isValidationError(err) {
			return utils.SendValidationError(c, "invalid payload", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}

	return utils.SendSuccess(c, "logged in", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)
	if actor == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	h.service.Logout(c.Context(), middleware.RequestMetaFromContext(c), *actor)
	return utils.SendSuccess(c, "logged out", nil)
}
