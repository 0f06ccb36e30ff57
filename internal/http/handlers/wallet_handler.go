package handlers

import (
	"github.com/escrowdesk/backend/internal/http/dto"
	"github.com/escrowdesk/backend/internal/middleware"
	"github.com/escrowdesk/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WalletHandler struct {
	escrow  *services.EscrowService
	methods *services.PaymentMethodService
	log     *zap.Logger
}

func NewWalletHandler(escrow *services.EscrowService, methods *services.PaymentMethodService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{escrow: escrow, methods: methods, log: log}
}

// GetBalance recomputes the caller's locked and available figures.
// GET /me/balance
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	balance, err := h.escrow.GetBalance(c.Context(), userID)
	if err != nil {
		h.log.Error("balance failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: balance})
}

// CreatePaymentMethod saves a disbursement target.
// POST /me/payment-methods
func (h *WalletHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	var req dto.CreatePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	userID := middleware.GetUserID(c)
	method, err := h.methods.Create(c.Context(), userID, services.CreatePaymentMethodInput{
		Method:        req.Method,
		Label:         req.Label,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		CryptoAddress: req.CryptoAddress,
	})
	if err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: method})
}

// GET /me/payment-methods
func (h *WalletHandler) ListPaymentMethods(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	methods, err := h.methods.List(c.Context(), userID)
	if err != nil {
		h.log.Error("list payment methods failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: methods})
}

// DELETE /me/payment-methods/:id
func (h *WalletHandler) DeletePaymentMethod(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid payment method id"})
	}

	userID := middleware.GetUserID(c)
	if err := h.methods.Delete(c.Context(), userID, id); err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: "payment method not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
