package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/app/repository"
	"github.com/bearbeat/bearbeat/internal/pkg/usercontext"
)

// HandleMyPurchases lists the purchases of the logged-in user, including the
// assigned FTP usernames. Passwords are only shown on the completion page
// and in the delivery email.
func HandleMyPurchases(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	purchases, err := repository.GetGlobalRepositories().Purchase.GetByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not list purchases")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"purchases": purchases})
}

// HandleMe returns the session identity.
func HandleMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.Status(fiber.StatusOK).JSON(userCtx)
}
