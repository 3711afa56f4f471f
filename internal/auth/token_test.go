package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestTokenRoundTrip verifies a freshly issued token parses back to the same
// user id.
func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", "line-budget-bot", time.Hour)
	userID := uuid.New()

	token, expiresAt, err := manager.NewToken(userID)
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiresAt = %v, want in the future", expiresAt)
	}

	parsed, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed != userID {
		t.Fatalf("Parse() = %s, want %s", parsed, userID)
	}
}

// TestParseRejectsWrongSecret verifies tokens signed with another secret do
// not validate.
func TestParseRejectsWrongSecret(t *testing.T) {
	issuing := NewTokenManager("secret-a", "line-budget-bot", time.Hour)
	verifying := NewTokenManager("secret-b", "line-budget-bot", time.Hour)

	token, _, err := issuing.NewToken(uuid.New())
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}

	if _, err := verifying.Parse(token); err == nil {
		t.Fatal("expected error for token signed with wrong secret")
	}
}

// TestParseRejectsWrongIssuer verifies the issuer claim is enforced.
func TestParseRejectsWrongIssuer(t *testing.T) {
	issuing := NewTokenManager("test-secret", "someone-else", time.Hour)
	verifying := NewTokenManager("test-secret", "line-budget-bot", time.Hour)

	token, _, err := issuing.NewToken(uuid.New())
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}

	if _, err := verifying.Parse(token); err == nil {
		t.Fatal("expected error for token with wrong issuer")
	}
}

// TestParseRejectsExpired verifies an expired token fails validation.
func TestParseRejectsExpired(t *testing.T) {
	manager := NewTokenManager("test-secret", "line-budget-bot", -time.Minute)

	token, _, err := manager.NewToken(uuid.New())
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}

	if _, err := manager.Parse(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

// TestParseRejectsUnsignedAlgorithm verifies tokens using the none algorithm
// are rejected regardless of their claims.
func TestParseRejectsUnsignedAlgorithm(t *testing.T) {
	manager := NewTokenManager("test-secret", "line-budget-bot", time.Hour)

	claims := jwt.RegisteredClaims{
		Issuer:    "line-budget-bot",
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign unsecured token: %v", err)
	}

	if _, err := manager.Parse(token); err == nil {
		t.Fatal("expected error for unsecured token")
	}
}
