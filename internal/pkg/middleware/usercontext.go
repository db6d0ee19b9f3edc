package middleware

import (
	"strings"

	"github.com/bearbeat/bearbeat/app/repository"
	"github.com/bearbeat/bearbeat/internal/pkg/session"
	"github.com/bearbeat/bearbeat/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes user session handling and eliminates code duplication.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	anonymous := func() error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		c.Locals(usercontext.KeyIsAdmin, false)
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return anonymous()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		return anonymous()
	}

	uid, ok := userID.(uint)
	if !ok {
		return anonymous()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	email := session.GetSessionValue(c, "user_email")
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	// Session may predate the admin flag; fall back to a DB lookup once.
	admin := isAdmin != nil && isAdmin == true
	if isAdmin == nil {
		if user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(uid); err == nil {
			admin = user.Role == "admin"
			sess.Set(usercontext.KeyIsAdmin, admin)
			_ = sess.Save()
		}
	}

	userCtx := usercontext.UserContext{
		UserID:     uid,
		Username:   username,
		Email:      email,
		IsLoggedIn: true,
		IsAdmin:    admin,
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyUserID, uid)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}
