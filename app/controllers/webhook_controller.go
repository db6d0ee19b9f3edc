package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/internal/pkg/checkout"
	"github.com/bearbeat/bearbeat/internal/pkg/payment"
)

// HandleStripeWebhook receives Stripe event deliveries. The event is
// persisted before anything else so a crash mid-handling never loses it;
// Stripe retries on any non-2xx status.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signatureValid := deps.Stripe.VerifyWebhookSignature(rawBody, c.Get("Stripe-Signature"))

	event, err := deps.Stripe.ParseWebhookEvent(rawBody)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "could not parse event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := deps.Checkout.RecordWebhookEvent(ctx, checkout.WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "webhook_persist_failed", "could not store event")
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = deps.Checkout.MarkWebhookProcessed(ctx, stored.ID, "invalid webhook signature")
		return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "signature verification failed")
	}
	if event.Session == nil {
		_ = deps.Checkout.MarkWebhookProcessed(ctx, stored.ID, "")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	return recordSession(c, ctx, stored.ID, event.Session)
}

// HandlePayPalWebhook receives PayPal event deliveries. Order-approved
// events are captured against the PayPal API before being recorded, so the
// stored pending purchase reflects the actual payment state.
func HandlePayPalWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	event, err := deps.PayPal.ParseWebhookEvent(rawBody)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "could not parse event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	headers := map[string]string{
		"Paypal-Auth-Algo":         c.Get("Paypal-Auth-Algo"),
		"Paypal-Cert-Url":          c.Get("Paypal-Cert-Url"),
		"Paypal-Transmission-Id":   c.Get("Paypal-Transmission-Id"),
		"Paypal-Transmission-Sig":  c.Get("Paypal-Transmission-Sig"),
		"Paypal-Transmission-Time": c.Get("Paypal-Transmission-Time"),
	}
	signatureValid, verifyErr := deps.PayPal.VerifyWebhookSignature(ctx, headers, rawBody)
	if verifyErr != nil {
		// Verification is a network round trip; let PayPal redeliver.
		return jsonError(c, fiber.StatusInternalServerError, "signature_check_failed", "could not verify signature")
	}

	created, stored, err := deps.Checkout.RecordWebhookEvent(ctx, checkout.WebhookEventInput{
		Provider:        models.PaymentProviderPayPal,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "webhook_persist_failed", "could not store event")
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = deps.Checkout.MarkWebhookProcessed(ctx, stored.ID, "invalid webhook signature")
		return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "signature verification failed")
	}
	if event.Session == nil {
		_ = deps.Checkout.MarkWebhookProcessed(ctx, stored.ID, "")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	// An approved order is not money yet; capture it now.
	captured, err := deps.PayPal.CaptureOrder(ctx, event.Session.SessionID)
	if err != nil {
		_ = deps.Checkout.MarkWebhookProcessed(ctx, stored.ID, err.Error())
		return jsonError(c, fiber.StatusInternalServerError, "capture_failed", "could not capture order")
	}
	// The capture response has no custom_id on some API versions; keep the
	// pack slug from the webhook resource.
	if captured.PackSlug == "" {
		captured.PackSlug = event.Session.PackSlug
	}

	return recordSession(c, ctx, stored.ID, captured)
}

func recordSession(c *fiber.Ctx, ctx context.Context, eventID uint, session *payment.CheckoutSession) error {
	created, pending, err := deps.Checkout.RecordCheckoutSession(ctx, session)
	if err != nil {
		if errors.Is(err, checkout.ErrUnknownPack) {
			// Permanent failure, redelivery will never fix it.
			_ = deps.Checkout.MarkWebhookProcessed(ctx, eventID, err.Error())
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		_ = deps.Checkout.MarkWebhookProcessed(ctx, eventID, err.Error())
		return jsonError(c, fiber.StatusInternalServerError, "session_record_failed", "could not store checkout session")
	}

	_ = deps.Checkout.MarkWebhookProcessed(ctx, eventID, "")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":         true,
		"created":    created,
		"session_id": pending.SessionID,
	})
}
