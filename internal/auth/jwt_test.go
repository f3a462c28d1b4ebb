package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	userID := uuid.New()

	token, err := svc.Generate(userID, "host@example.com", "host", "approved")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "host@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != "host" {
		t.Errorf("role = %q, want host", claims.Role)
	}
	if claims.Status != "approved" {
		t.Errorf("status = %q, want approved", claims.Status)
	}
}

func TestJWTValidateRejects(t *testing.T) {
	svc := NewJWTService("test-secret", 24)

	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}

	other := NewJWTService("different-secret", 24)
	token, err := other.Generate(uuid.New(), "a@b.com", "host", "pending")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("token signed with a different secret validated")
	}

	expired := NewJWTService("test-secret", -1)
	token, err = expired.Generate(uuid.New(), "a@b.com", "host", "approved")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("expired token validated")
	}
}
