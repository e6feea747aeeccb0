package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	raw, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("got user id %d want 42", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a", time.Hour).Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokens("secret-b", time.Hour).Verify(raw); err == nil {
		t.Fatalf("expected verification to fail with the wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := tokens.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tokens.now = time.Now
	if _, err := tokens.Verify(raw); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestTokenGarbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tokens.Verify(raw); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("expected wrong password to fail")
	}
}
