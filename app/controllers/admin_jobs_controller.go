package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/internal/pkg/jobqueue"
)

// HandleAdminJobStats reports job queue occupancy and per-status counters.
func HandleAdminJobStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	queue := jobqueue.GetManager().GetQueue()
	stats, err := queue.GetJobStats(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats_failed", "could not read job stats")
	}
	pending, err := queue.GetQueueSize(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats_failed", "could not read queue size")
	}
	processing, err := queue.GetProcessingSize(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats_failed", "could not read processing size")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"running":    jobqueue.GetManager().IsRunning(),
		"queued":     pending,
		"processing": processing,
		"statuses":   stats,
	})
}
