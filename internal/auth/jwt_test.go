package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/orodjarna/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
}

func TestGenerateAndValidateToken(t *testing.T) {
	iss := NewIssuer("test-secret-key", time.Hour)

	token, err := iss.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := iss.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := NewIssuer("secret1", time.Hour).Generate(testUser())

	_, err := NewIssuer("secret2", time.Hour).Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Validate("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }

	token, err := iss.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := iss.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	iss := NewIssuer("test", 0)
	if iss.TTL() != DefaultTokenTTL {
		t.Fatalf("expected default TTL, got %v", iss.TTL())
	}

	token, _ := iss.Generate(testUser())
	claims, _ := iss.Validate(token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(DefaultTokenTTL)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestPasswordHelpers(t *testing.T) {
	pw, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 chars, got %d", len(pw))
	}

	hash, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, pw) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword(hash, pw+"x") {
		t.Error("expected wrong password to be rejected")
	}

	if _, err := GeneratePassword(0); err == nil {
		t.Error("expected error for zero length")
	}
}
