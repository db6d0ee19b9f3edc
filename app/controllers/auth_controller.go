package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/app/repository"
)

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account and sends the activation email.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "could not parse request body")
	}

	if deps.HCaptcha != nil && deps.Config.HCaptcha.Secret != "" {
		if ok, err := deps.HCaptcha.Verify(req.CaptchaToken); !ok || err != nil {
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "captcha verification failed")
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	userRepo := repository.GetGlobalRepositories().User
	if _, err := userRepo.GetByEmail(email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
	}

	user, err := models.CreateUser(strings.TrimSpace(req.Name), email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "registration_failed", "could not create account")
	}
	if err := userRepo.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "registration_failed", "could not create account")
	}

	if deps.Mailer != nil {
		activationURL := fmt.Sprintf("%s/auth/activate?token=%s",
			strings.TrimRight(deps.Config.App.PublicDomain, "/"), user.ActivationToken)
		body := fmt.Sprintf(
			`<h2>Welcome to Bear Beat!</h2><p>Confirm your account: <a href="%s">activate</a></p>`,
			activationURL)
		if err := deps.Mailer.Send(user.Email, "Activate your Bear Beat account", body); err != nil {
			log.Errorf("failed to send activation email to %s: %v", user.Email, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":      true,
		"user_id": user.ID,
	})
}

// HandleActivateAccount confirms the email activation token.
func HandleActivateAccount(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "token_required", "activation token is required")
	}

	userRepo := repository.GetGlobalRepositories().User
	user, err := userRepo.GetByActivationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "invalid_token", "activation token is invalid")
		}
		return jsonError(c, fiber.StatusInternalServerError, "activation_failed", "could not activate account")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := userRepo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "activation_failed", "could not activate account")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleLogin verifies credentials and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "could not parse request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := repository.GetGlobalRepositories().User.GetByEmail(email)
	if err != nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "email or password is wrong")
	}
	if user.Status == models.STATUS_DISABLED {
		return jsonError(c, fiber.StatusForbidden, "account_disabled", "this account is disabled")
	}

	if err := loginUser(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "login_failed", "could not open session")
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = repository.GetGlobalRepositories().User.Update(user)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	if err := logoutUser(c); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "logout_failed", "could not destroy session")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
