package jwtutil

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("super-secret", time.Hour, 42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken("super-secret", token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "alice")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("secret", -1*time.Second, 1, "bob")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("right-secret", time.Hour, 1, "bob")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken("wrong-secret", token); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("secret", "not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
