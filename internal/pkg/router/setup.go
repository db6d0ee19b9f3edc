package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, cfg *config.Config) {
	// Install HttpRouter first to initialize the session store, oauth
	// providers and the global UserContext middleware. Then register API
	// routes which depend on that middleware.
	setup(app, NewHttpRouter(cfg), NewApiRouter(cfg))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
