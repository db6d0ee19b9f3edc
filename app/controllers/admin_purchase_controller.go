package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/app/repository"
)

// HandleAdminRetryPending re-runs activation for paid pending purchases that
// never completed, e.g. after a pool exhaustion or a crashed completion page.
func HandleAdminRetryPending(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report, err := deps.Checkout.RetryPending(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "retry_failed", "could not run retry")
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// HandleAdminListPending lists pending purchases awaiting completion.
func HandleAdminListPending(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	repos := repository.GetGlobalRepositories()
	rows, err := repos.PendingPurchase.ListAwaitingCompletion(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not list pending purchases")
	}
	total, err := repos.PendingPurchase.CountAwaitingCompletion()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not count pending purchases")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total":   total,
		"pending": rows,
	})
}

// HandleAdminListPurchases lists finalized purchases.
func HandleAdminListPurchases(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	repos := repository.GetGlobalRepositories()
	rows, err := repos.Purchase.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not list purchases")
	}
	total, err := repos.Purchase.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "list_failed", "could not count purchases")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total":     total,
		"purchases": rows,
	})
}
