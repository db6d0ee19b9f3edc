package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
	"github.com/bearbeat/bearbeat/internal/pkg/middleware"
	"github.com/bearbeat/bearbeat/internal/pkg/oauth"
	"github.com/bearbeat/bearbeat/internal/pkg/session"
)

type HttpRouter struct {
	cfg *config.Config
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore(h.cfg.Cache)

	// init oauth providers
	oauth.Setup(h.cfg)

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter(cfg *config.Config) *HttpRouter {
	return &HttpRouter{cfg: cfg}
}
