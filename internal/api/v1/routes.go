package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong is the response body of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists the operations served under /api/v1. The route
// paths must stay in sync with public/docs/v1/openapi.yml.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetPacks(c *fiber.Ctx) error
	GetPack(c *fiber.Ctx) error
	GetCheckoutStatus(c *fiber.Ctx) error
}

// RegisterHandlers attaches all v1 operations to the given router group.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)
	router.Get("/packs", si.GetPacks)
	router.Get("/packs/:slug", si.GetPack)
	router.Get("/checkout/status/:session_id", si.GetCheckoutStatus)
}
