package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/app/repository"
)

// HandleOAuthBegin starts the provider flow.
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in. An
// unknown Google account becomes a new active user; a known email is linked
// to the existing account so buyers keep their purchases.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "oauth_failed", fmt.Sprintf("OAuth failed: %v", err))
	}

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" {
		return jsonError(c, fiber.StatusBadRequest, "oauth_no_email", "the provider returned no email address")
	}

	userRepo := repository.GetGlobalRepositories().User
	user, err := userRepo.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusInternalServerError, "oauth_failed", "could not look up account")
		}

		// Password is a random placeholder, not used for login.
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		hash, _ := models.HashPassword(placeholder)
		user = &models.User{
			Name:     firstNonEmpty(u.Name, u.NickName, email),
			Email:    email,
			Password: hash,
			Role:     models.ROLE_USER,
			Status:   models.STATUS_ACTIVE,
		}
		if err := userRepo.Create(user); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "oauth_failed", "could not create account")
		}
	}

	if err := loginUser(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "oauth_failed", "could not open session")
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = userRepo.Update(user)

	return c.Redirect("/", fiber.StatusSeeOther)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "User"
}
