package handlers

import (
	"purchases-api/domain"
	"purchases-api/internal/api/presenters"
	"purchases-api/internal/metrics"
	"purchases-api/pkg/jwt"
	"purchases-api/pkg/telegram"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	AuthHandler interface {
		TelegramLogin(c *fiber.Ctx) error
	}

	authHandler struct {
		loginVerifier telegram.LoginVerifier
		jwtService    jwt.JWTService
		validator     *validator.Validate
	}
)

func NewAuthHandler(loginVerifier telegram.LoginVerifier, jwtService jwt.JWTService, validator *validator.Validate) AuthHandler {
	return &authHandler{
		loginVerifier: loginVerifier,
		jwtService:    jwtService,
		validator:     validator,
	}
}

// TelegramLogin exchanges a verified Login Widget payload for a token.
func (h *authHandler) TelegramLogin(c *fiber.Ctx) error {
	req := new(domain.TelegramLoginRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedTelegramLogin, err)
	}

	userID, err := h.loginVerifier.Verify(*req)
	if err != nil {
		metrics.AuthFailures.WithLabelValues("telegram").Inc()
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedTelegramLogin, err)
	}

	token, err := h.jwtService.GenerateTokenUser(userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedTelegramLogin, err)
	}

	return presenters.SuccessResponse(c, domain.TokenResponse{
		Token:  token,
		UserID: userID,
	}, fiber.StatusOK, domain.MessageSuccessTelegramLogin)
}
