package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/internal/pkg/cdn"
	"github.com/bearbeat/bearbeat/internal/pkg/checkout"
	"github.com/bearbeat/bearbeat/internal/pkg/config"
	"github.com/bearbeat/bearbeat/internal/pkg/hcaptcha"
	"github.com/bearbeat/bearbeat/internal/pkg/mail"
	"github.com/bearbeat/bearbeat/internal/pkg/packstore"
	"github.com/bearbeat/bearbeat/internal/pkg/payment"
	"github.com/bearbeat/bearbeat/internal/pkg/session"
	"github.com/bearbeat/bearbeat/internal/pkg/usercontext"
)

// Dependencies holds everything the controllers need. Wired once during
// startup; handlers never read the environment themselves.
type Dependencies struct {
	Config    *config.Config
	Checkout  *checkout.Service
	Stripe    *payment.StripeClient
	PayPal    *payment.PayPalClient
	HCaptcha  *hcaptcha.Client
	CDN       *cdn.BunnySigner
	PackStore *packstore.Client
	Mailer    *mail.Mailer
}

var deps Dependencies

// Initialize wires the controller dependencies.
func Initialize(d Dependencies) {
	deps = d
}

func jsonError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// loginUser writes the user identity into the session.
func loginUser(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set("user_email", user.Email)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	return sess.Save()
}

func logoutUser(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
