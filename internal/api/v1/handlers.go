package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/bearbeat/bearbeat/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetPacks lists the active video packs. Delegates to the storefront
// controller for a consistent response shape.
func (s *APIServer) GetPacks(c *fiber.Ctx) error {
	return controllers.HandleListPacks(c)
}

// GetPack returns a single pack by slug.
func (s *APIServer) GetPack(c *fiber.Ctx) error {
	return controllers.HandleGetPack(c)
}

// GetCheckoutStatus reports whether a checkout session has been paid and
// completed. The completion page polls this while waiting for the webhook.
func (s *APIServer) GetCheckoutStatus(c *fiber.Ctx) error {
	return controllers.HandleCheckoutStatus(c)
}
