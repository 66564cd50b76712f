package handlers

import (
	"purchases-api/domain"
	"purchases-api/internal/api/presenters"
	"purchases-api/pkg/purchase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PurchaseHandler interface {
		OpenSession(c *fiber.Ctx) error
		GetSession(c *fiber.Ctx) error
		SaveSession(c *fiber.Ctx) error
		CloseSession(c *fiber.Ctx) error
		GetSummary(c *fiber.Ctx) error
		ExportXLSX(c *fiber.Ctx) error
		ArchiveExport(c *fiber.Ctx) error
	}

	purchaseHandler struct {
		purchaseService purchase.PurchaseService
		validator       *validator.Validate
	}
)

func NewPurchaseHandler(purchaseService purchase.PurchaseService, validator *validator.Validate) PurchaseHandler {
	return &purchaseHandler{
		purchaseService: purchaseService,
		validator:       validator,
	}
}

func (h *purchaseHandler) OpenSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	res, err := h.purchaseService.OpenSession(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedOpenSession, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessOpenSession)
}

func (h *purchaseHandler) GetSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	sessionID := c.Params("id")

	res, err := h.purchaseService.GetSession(c.Context(), sessionID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetSession, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSession)
}

func (h *purchaseHandler) SaveSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	sessionID := c.Params("id")
	req := new(domain.SaveSnapshotRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveSession, err)
	}

	res, err := h.purchaseService.SaveSession(c.Context(), sessionID, *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSaveSession, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSaveSession)
}

func (h *purchaseHandler) CloseSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	sessionID := c.Params("id")

	if err := h.purchaseService.CloseSession(c.Context(), sessionID, userID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedCloseSession, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessCloseSession)
}

func (h *purchaseHandler) GetSummary(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	summary, err := h.purchaseService.GetSummary(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetSummary, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"categories": summary,
	}, fiber.StatusOK, domain.MessageSuccessGetSummary)
}

func (h *purchaseHandler) ExportXLSX(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	body, err := h.purchaseService.ExportXLSX(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedExport, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="purchases.xlsx"`)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *purchaseHandler) ArchiveExport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	res, err := h.purchaseService.ArchiveExport(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedArchiveExport, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessArchiveExport)
}
