package handlers

import (
	"github.com/escrowdesk/backend/internal/http/dto"
	"github.com/escrowdesk/backend/internal/middleware"
	"github.com/escrowdesk/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DisputeHandler struct {
	escrow *services.EscrowService
	log    *zap.Logger
}

func NewDisputeHandler(escrow *services.EscrowService, log *zap.Logger) *DisputeHandler {
	return &DisputeHandler{escrow: escrow, log: log}
}

// OpenDispute escalates a deal on behalf of one of its parties.
// POST /deals/:id/dispute
func (h *DisputeHandler) OpenDispute(c *fiber.Ctx) error {
	dealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deal id"})
	}

	var req dto.OpenDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	actorID := middleware.GetUserID(c)
	dispute, err := h.escrow.OpenDispute(c.Context(), dealID, actorID, req.Reason)
	if err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

// GetDispute returns the latest dispute of a deal.
// GET /deals/:id/dispute
func (h *DisputeHandler) GetDispute(c *fiber.Ctx) error {
	dealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid deal id"})
	}

	dispute, err := h.escrow.GetDispute(c.Context(), dealID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: "dispute not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dispute})
}

// ResolveDispute settles a dispute, releasing or refunding the escrow.
// POST /disputes/:id/resolve
func (h *DisputeHandler) ResolveDispute(c *fiber.Ctx) error {
	disputeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid dispute id"})
	}

	var req dto.ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	resolverID := middleware.GetUserID(c)
	if err := h.escrow.ResolveDispute(c.Context(), disputeID, resolverID, req.ResolutionText, req.Action); err != nil {
		return c.Status(statusForError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
