package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/bearbeat/bearbeat/app/controllers"
	"github.com/bearbeat/bearbeat/internal/pkg/constants"
	"github.com/bearbeat/bearbeat/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.PublicRoute, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"name": "Bear Beat", "docs": "/docs/api/v1"})
	})

	// Storefront
	app.Get("/packs", controllers.HandleListPacks)
	app.Get("/packs/:slug", controllers.HandleGetPack)

	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post(constants.StripeWebhookRoute, controllers.HandleStripeWebhook)
	app.Post(constants.PayPalWebhookRoute, controllers.HandlePayPalWebhook)

	// Checkout completion page endpoints
	app.Post(constants.CheckoutCompleteRoute, controllers.HandleCheckoutComplete)
	app.Get(constants.CheckoutStatusRoute, controllers.HandleCheckoutStatus)

	// Account
	authLimiter := limiter.New(limiter.Config{Max: 20})
	app.Post("/register", authLimiter, controllers.HandleRegister)
	app.Post("/login", authLimiter, controllers.HandleLogin)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
	app.Get("/auth/activate", controllers.HandleActivateAccount)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Downloads
	app.Get(constants.DownloadRoute, controllers.HandleDownload)
	app.Get("/download/:reference/token", middleware.RequireAuth, controllers.HandleDownloadToken)

	// User area
	app.Get("/user/me", middleware.RequireAuth, controllers.HandleMe)
	app.Get("/user/purchases", middleware.RequireAuth, controllers.HandleMyPurchases)
}
