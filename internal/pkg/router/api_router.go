package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/bearbeat/bearbeat/internal/api/v1"
	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

type ApiRouter struct {
	cfg *config.Config
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// The completion page polls checkout status every few seconds, so the
	// ceiling is per-minute rather than fiber's default 30s window.
	max := 120
	if h.cfg.IsDev() {
		max = 1000
	}
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"name": "Bear Beat API",
			"docs": "/docs/api/v1",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter(cfg *config.Config) *ApiRouter {
	return &ApiRouter{cfg: cfg}
}
