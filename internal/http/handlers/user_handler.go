package handlers

import (
	"github.com/escrowdesk/backend/internal/config"
	"github.com/escrowdesk/backend/internal/http/dto"
	"github.com/escrowdesk/backend/internal/middleware"
	"github.com/escrowdesk/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	users *repositories.UserRepo
	cfg   *config.Config
	log   *zap.Logger
}

func NewUserHandler(users *repositories.UserRepo, cfg *config.Config, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, cfg: cfg, log: log}
}

// GetMe returns the caller's profile, creating the local mirror row on
// first contact.
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	user, err := h.users.Upsert(c.Context(), userID, nil, nil)
	if err != nil {
		h.log.Error("upsert user failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"user":     user,
		"is_admin": h.cfg.IsAdmin(userID),
	}})
}

// UpdateMe writes the optional profile fields. Absent fields keep their
// stored values.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	userID := middleware.GetUserID(c)
	user, err := h.users.Upsert(c.Context(), userID, req.Username, req.Phone)
	if err != nil {
		h.log.Error("update profile failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}
