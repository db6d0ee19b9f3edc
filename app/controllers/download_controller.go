package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/app/repository"
	metrics "github.com/bearbeat/bearbeat/internal/pkg/metrics/counter"
	"github.com/bearbeat/bearbeat/internal/pkg/security"
	"github.com/bearbeat/bearbeat/internal/pkg/usercontext"
)

// HandleDownload redirects an authorized buyer to a freshly signed pack URL.
// Authorization is either a download token (from the delivery email) or the
// logged-in owner of the purchase.
func HandleDownload(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return jsonError(c, fiber.StatusBadRequest, "reference_required", "purchase reference is required")
	}

	repos := repository.GetGlobalRepositories()
	purchase, err := repos.Purchase.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "unknown_purchase", "no purchase found for this reference")
		}
		return jsonError(c, fiber.StatusInternalServerError, "lookup_failed", "could not look up purchase")
	}

	if !downloadAuthorized(c, purchase) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "this download does not belong to you")
	}

	pack, err := repos.Pack.GetByID(purchase.PackID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "lookup_failed", "could not look up pack")
	}

	if err := metrics.AddPackDownload(pack.ID); err != nil {
		log.Warnf("failed to count download for pack %d: %v", pack.ID, err)
	}

	// CDN first; the object store presign is the fallback when no pull zone
	// is configured.
	if deps.CDN != nil {
		if url, err := deps.CDN.SignURL(pack.BunnyPath); err == nil {
			return c.Redirect(url, fiber.StatusFound)
		}
	}
	if deps.PackStore != nil && pack.ArchiveObjectKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if url, err := deps.PackStore.PresignDownload(ctx, pack.ArchiveObjectKey); err == nil {
			return c.Redirect(url, fiber.StatusFound)
		}
	}

	return jsonError(c, fiber.StatusServiceUnavailable, "download_unavailable", "no download source is configured")
}

// HandleDownloadToken issues a short-lived download token for the logged-in
// owner, e.g. to hand to a download manager.
func HandleDownloadToken(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	userCtx := usercontext.GetUserContext(c)

	purchase, err := repository.GetGlobalRepositories().Purchase.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "unknown_purchase", "no purchase found for this reference")
		}
		return jsonError(c, fiber.StatusInternalServerError, "lookup_failed", "could not look up purchase")
	}
	if purchase.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "this purchase does not belong to you")
	}

	token, err := security.GenerateDownloadToken(
		purchase.UserID, purchase.ID, purchase.PackID,
		time.Hour, deps.Config.App.DownloadSecret)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "token_failed", "could not issue token")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":      token,
		"expires_in": int(time.Hour.Seconds()),
	})
}

func downloadAuthorized(c *fiber.Ctx, purchase *models.Purchase) bool {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		claims, err := security.VerifyDownloadToken(token, deps.Config.App.DownloadSecret)
		if err == nil && claims.PurchaseID == purchase.ID {
			return true
		}
		return false
	}

	userCtx := usercontext.GetUserContext(c)
	return userCtx.IsLoggedIn && userCtx.UserID == purchase.UserID
}
