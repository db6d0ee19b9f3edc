package oauth

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/bearbeat/bearbeat/internal/pkg/cache"
	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

// Setup initializes the Google provider and the OAuth state session store.
// It is safe to call multiple times; providers will just be re-registered.
func Setup(cfg *config.Config) {
	base := strings.TrimRight(cfg.App.PublicDomain, "/")
	if base == "" {
		base = "http://localhost:" + cfg.App.Port
	}

	goth.UseProviders(
		google.New(
			cfg.OAuth.GoogleKey,
			cfg.OAuth.GoogleSecret,
			base+"/auth/google/callback",
			"email", "profile",
		),
	)

	// OAuth state via Redis, using same connection as app sessions (separate DB)
	cacheClient := cache.GetClient()
	cacheOpts := cacheClient.Options()
	host, port := "127.0.0.1", 6379
	if cacheOpts != nil && cacheOpts.Addr != "" {
		if h, p, err := net.SplitHostPort(cacheOpts.Addr); err == nil {
			host = h
			if parsed, e := strconv.Atoi(p); e == nil {
				port = parsed
			}
		} else {
			host = cacheOpts.Addr
		}
	}

	gothfiber.SessionStore = session.New(session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Username: cacheOpts.Username,
			Password: cacheOpts.Password,
			Database: 2,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !cfg.IsDev(),
		Expiration:     72 * time.Hour,
	})
}
