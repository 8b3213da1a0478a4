package tokens

import (
	"testing"
	"time"

	"github.com/medifed/portal/internal/models"
)

func TestGenerateAndVerifySessionToken(t *testing.T) {
	u := &models.User{ID: "u1", Username: "a@x.com", Role: models.RolePatient}
	raw, err := GenerateSessionToken("test-secret-32-bytes-xxxxxxxxxxx", u, "sid-1", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	v := NewCookieVerifier("test-secret-32-bytes-xxxxxxxxxxx")
	ident, err := v.VerifySessionCookie(raw)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ident.UserID != "u1" || ident.Username != "a@x.com" || ident.Role != "patient" || ident.SessionID != "sid-1" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	u := &models.User{ID: "u1", Username: "a@x.com", Role: models.RolePatient}
	raw, err := GenerateSessionToken("secret-one", u, "sid-1", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	v := NewCookieVerifier("secret-two")
	if _, err := v.VerifySessionCookie(raw); err == nil {
		t.Fatalf("expected rejection with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	u := &models.User{ID: "u1", Username: "a@x.com", Role: models.RolePatient}
	raw, err := GenerateSessionToken("secret-one", u, "sid-1", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	v := NewCookieVerifier("secret-one")
	if _, err := v.VerifySessionCookie(raw); err == nil {
		t.Fatalf("expected rejection of expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewCookieVerifier("secret-one")
	if _, err := v.VerifySessionCookie("not.a.jwt"); err == nil {
		t.Fatalf("expected rejection of malformed token")
	}
}
