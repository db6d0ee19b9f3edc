package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/app/repository"
)

type restockRequest struct {
	Accounts []struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"accounts"`
}

// HandleAdminPoolStats reports pool occupancy.
func HandleAdminPoolStats(c *fiber.Ctx) error {
	stats, err := repository.GetGlobalRepositories().FTPPool.Stats()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats_failed", "could not read pool stats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// HandleAdminPoolList lists pool accounts with their assignment state.
func HandleAdminPoolList(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	accounts, err := repository.GetGlobalRepositories().FTPPool.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not list pool accounts")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"accounts": accounts})
}

// HandleAdminPoolRestock bulk-adds pre-provisioned accounts. Usernames that
// already exist are skipped, so re-uploading a credentials file is safe.
func HandleAdminPoolRestock(c *fiber.Ctx) error {
	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "could not parse request body")
	}

	accounts := make([]models.FtpPoolAccount, 0, len(req.Accounts))
	for _, a := range req.Accounts {
		username := strings.TrimSpace(a.Username)
		if username == "" || a.Password == "" {
			return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_account", "every account needs a username and a password")
		}
		accounts = append(accounts, models.FtpPoolAccount{
			Username: username,
			Password: a.Password,
		})
	}
	if len(accounts) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "no_accounts", "no accounts provided")
	}

	added, err := repository.GetGlobalRepositories().FTPPool.Restock(accounts)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "restock_failed", "could not restock the pool")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"added":   added,
		"skipped": int64(len(accounts)) - added,
	})
}

// HandleAdminPoolRelease frees a pool account after a refund.
func HandleAdminPoolRelease(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "account id is required")
	}

	if err := repository.GetGlobalRepositories().FTPPool.Release(uint(id)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "release_failed", "could not release the account")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
