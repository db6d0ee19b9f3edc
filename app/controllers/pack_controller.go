package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/repository"
)

// HandleListPacks returns the active packs for the storefront.
func HandleListPacks(c *fiber.Ctx) error {
	packs, err := repository.GetGlobalRepositories().Pack.GetActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not list packs")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"packs": packs})
}

// HandleGetPack returns one pack by slug.
func HandleGetPack(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))
	pack, err := repository.GetGlobalRepositories().Pack.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "unknown_pack", "no pack with this slug")
		}
		return jsonError(c, fiber.StatusInternalServerError, "lookup_failed", "could not look up pack")
	}
	if !pack.IsActive {
		return jsonError(c, fiber.StatusNotFound, "unknown_pack", "no pack with this slug")
	}
	return c.Status(fiber.StatusOK).JSON(pack)
}
