package security

import (
	"strings"
	"testing"
	"time"
)

func TestDownloadTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateDownloadToken(7, 42, 1, time.Minute, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := VerifyDownloadToken(token, secret)
	if err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
	if claims.UserID != 7 || claims.PurchaseID != 42 || claims.PackID != 1 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestDownloadTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateDownloadToken(7, 42, 1, time.Minute, "secret-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := VerifyDownloadToken(token, "secret-b"); err == nil {
		t.Fatal("expected verification to fail with wrong secret")
	}
}

func TestDownloadTokenRejectsTampered(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateDownloadToken(7, 42, 1, time.Minute, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.SplitN(token, ".", 2)
	tampered := parts[0] + "x." + parts[1]
	if _, err := VerifyDownloadToken(tampered, secret); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestDownloadTokenRejectsExpired(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateDownloadToken(7, 42, 1, -time.Minute, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := VerifyDownloadToken(token, secret); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestDownloadTokenRequiresSecret(t *testing.T) {
	if _, err := GenerateDownloadToken(1, 1, 1, time.Minute, ""); err == nil {
		t.Fatal("expected generation without secret to fail")
	}
	if _, err := VerifyDownloadToken("a.b", ""); err == nil {
		t.Fatal("expected verification without secret to fail")
	}
}
