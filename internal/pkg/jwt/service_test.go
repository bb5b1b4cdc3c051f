package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("secret", time.Hour)
	userID := uuid.New()

	tok, err := svc.GenerateAccessToken(userID, ActorManager)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.Kind != ActorManager {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	tok, err := svc.GenerateAccessToken(uuid.New(), ActorEmployee)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_WrongSecret(t *testing.T) {
	tok, err := NewHMACService("a", time.Hour).GenerateAccessToken(uuid.New(), ActorAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewHMACService("b", time.Hour).ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_RejectsUnknownKind(t *testing.T) {
	if _, err := NewHMACService("a", time.Hour).GenerateAccessToken(uuid.New(), ActorKind("GUEST")); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if k, ok := ParseActorKind(" admin "); !ok || k != ActorAdmin {
		t.Fatalf("expected ADMIN, got %q %v", k, ok)
	}
}
