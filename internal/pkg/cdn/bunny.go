package cdn

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

// BunnySigner builds token-authenticated URLs for a BunnyCDN pull zone.
// The zone must have URL token authentication enabled with the same key.
type BunnySigner struct {
	hostname string
	tokenKey string
	expiry   time.Duration

	now func() time.Time
}

func NewBunnySigner(cfg config.Bunny) *BunnySigner {
	expiry := cfg.TokenExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &BunnySigner{
		hostname: strings.TrimSuffix(strings.TrimSpace(cfg.Hostname), "/"),
		tokenKey: cfg.TokenKey,
		expiry:   expiry,
		now:      time.Now,
	}
}

// SignURL returns a signed URL for the given path on the pull zone. The token
// covers the path and the expiry timestamp, so a leaked link dies with it.
func (s *BunnySigner) SignURL(path string) (string, error) {
	if s.hostname == "" || s.tokenKey == "" {
		return "", errors.New("bunny cdn is not configured")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	expires := s.now().Add(s.expiry).Unix()
	sum := sha256.Sum256([]byte(s.tokenKey + path + fmt.Sprintf("%d", expires)))
	token := base64.RawURLEncoding.EncodeToString(sum[:])

	return fmt.Sprintf("https://%s%s?token=%s&expires=%d", s.hostname, path, token, expires), nil
}
