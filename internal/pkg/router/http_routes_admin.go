package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/bearbeat/bearbeat/app/controllers"
	"github.com/bearbeat/bearbeat/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin", middleware.RequireAdmin)

	// Purchases
	admin.Get("/purchases", controllers.HandleAdminListPurchases)
	admin.Get("/purchases/pending", controllers.HandleAdminListPending)
	admin.Post("/purchases/retry-pending", controllers.HandleAdminRetryPending)

	// FTP pool
	admin.Get("/ftp-pool", controllers.HandleAdminPoolList)
	admin.Get("/ftp-pool/stats", controllers.HandleAdminPoolStats)
	admin.Post("/ftp-pool/restock", controllers.HandleAdminPoolRestock)
	admin.Post("/ftp-pool/:id/release", controllers.HandleAdminPoolRelease)

	// Background jobs
	admin.Get("/jobs", controllers.HandleAdminJobStats)

	// Runtime metrics
	admin.Get("/monitor", monitor.New())
}
