package http

import (
	"time"

	"github.com/escrowdesk/backend/internal/config"
	"github.com/escrowdesk/backend/internal/http/handlers"
	"github.com/escrowdesk/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	userHandler *handlers.UserHandler,
	dealHandler *handlers.DealHandler,
	disputeHandler *handlers.DisputeHandler,
	walletHandler *handlers.WalletHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Put("/me", userHandler.UpdateMe)

	// Wallet
	protected.Get("/me/balance", walletHandler.GetBalance)
	protected.Post("/me/payment-methods", walletHandler.CreatePaymentMethod)
	protected.Get("/me/payment-methods", walletHandler.ListPaymentMethods)
	protected.Delete("/me/payment-methods/:id", walletHandler.DeletePaymentMethod)

	// Deals
	protected.Post("/deals", dealHandler.CreateDeal)
	protected.Get("/deals", dealHandler.ListDeals)
	protected.Get("/deals/:id", dealHandler.GetDeal)
	protected.Post("/deals/:id/funding", dealHandler.SubmitFunding)
	protected.Post("/deals/:id/status", dealHandler.SetStatus)
	protected.Get("/deals/:id/funds", dealHandler.GetFunds)
	protected.Get("/deals/:id/events", dealHandler.GetDealEvents)

	// Disputes
	protected.Post("/deals/:id/dispute", disputeHandler.OpenDispute)
	protected.Get("/deals/:id/dispute", disputeHandler.GetDispute)
	protected.Post("/disputes/:id/resolve", disputeHandler.ResolveDispute)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
