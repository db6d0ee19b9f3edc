package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/repository"
	"github.com/bearbeat/bearbeat/internal/pkg/checkout"
	"github.com/bearbeat/bearbeat/internal/pkg/usercontext"
)

type checkoutCompleteRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// HandleCheckoutComplete is called by the completion page after the provider
// redirects the buyer back. It activates the pending purchase and returns the
// purchase with its FTP credentials. Safe to call repeatedly.
func HandleCheckoutComplete(c *fiber.Ctx) error {
	var req checkoutCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "could not parse request body")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return jsonError(c, fiber.StatusBadRequest, "session_id_required", "session_id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	userCtx := usercontext.GetUserContext(c)
	result, err := deps.Checkout.Activate(ctx, checkout.ActivationInput{
		SessionID: req.SessionID,
		UserID:    userCtx.UserID,
		Email:     req.Email,
		Name:      req.Name,
		Phone:     req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			return jsonError(c, fiber.StatusNotFound, "unknown_session", "no purchase found for this session")
		case errors.Is(err, checkout.ErrNotPaid):
			return jsonError(c, fiber.StatusConflict, "payment_not_confirmed", "the payment is not confirmed yet")
		case errors.Is(err, checkout.ErrNoEmail):
			return jsonError(c, fiber.StatusUnprocessableEntity, "email_required", "an email address is required to deliver the purchase")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "activation_failed", "could not complete the purchase")
		}
	}

	response := fiber.Map{
		"ok":                   true,
		"already_completed":    result.AlreadyCompleted,
		"credentials_assigned": result.CredentialsAssigned,
		"user_created":         result.UserCreated,
		"purchase": fiber.Map{
			"reference":    result.Purchase.Reference,
			"amount_cents": result.Purchase.AmountCents,
			"currency":     result.Purchase.Currency,
		},
	}
	if result.CredentialsAssigned {
		response["ftp"] = fiber.Map{
			"host":     deps.Config.App.FTPHost,
			"username": result.Purchase.FTPUsername,
			"password": result.Purchase.FTPPassword,
		}
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

// HandleCheckoutStatus reports whether a checkout session was paid and
// completed; the completion page polls it while a webhook is still in flight.
func HandleCheckoutStatus(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Params("session_id"))
	if sessionID == "" {
		return jsonError(c, fiber.StatusBadRequest, "session_id_required", "session_id is required")
	}

	pending, err := repository.GetGlobalRepositories().PendingPurchase.GetBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "unknown_session", "no purchase found for this session")
		}
		return jsonError(c, fiber.StatusInternalServerError, "lookup_failed", "could not look up the session")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id":     pending.SessionID,
		"provider":       pending.Provider,
		"payment_status": pending.PaymentStatus,
		"status":         pending.Status,
	})
}
