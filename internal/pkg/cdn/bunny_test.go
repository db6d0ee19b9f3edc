package cdn

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

func TestBunnySignURL(t *testing.T) {
	s := NewBunnySigner(config.Bunny{
		Hostname:    "bearbeat.b-cdn.net",
		TokenKey:    "token-key",
		TokenExpiry: time.Hour,
	})
	fixed := time.Unix(1700000000, 0)
	s.now = func() time.Time { return fixed }

	url, err := s.SignURL("packs/bear-beat-pack.zip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expires := fixed.Add(time.Hour).Unix()
	sum := sha256.Sum256([]byte("token-key" + "/packs/bear-beat-pack.zip" + fmt.Sprintf("%d", expires)))
	wantToken := base64.RawURLEncoding.EncodeToString(sum[:])

	want := fmt.Sprintf("https://bearbeat.b-cdn.net/packs/bear-beat-pack.zip?token=%s&expires=%d", wantToken, expires)
	if url != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", url, want)
	}
}

func TestBunnySignURLUnconfigured(t *testing.T) {
	s := NewBunnySigner(config.Bunny{})
	if _, err := s.SignURL("/packs/x.zip"); err == nil {
		t.Fatal("expected error when cdn is not configured")
	}
}

func TestBunnySignURLNormalizesPath(t *testing.T) {
	s := NewBunnySigner(config.Bunny{Hostname: "cdn.example.com", TokenKey: "k"})
	url, err := s.SignURL("packs/a.zip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/packs/a.zip?") {
		t.Fatalf("expected normalized path in url, got %s", url)
	}
}
