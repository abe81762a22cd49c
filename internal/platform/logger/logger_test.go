package logger

import (
	"strings"
	"testing"
)

func TestIsRedactKey(t *testing.T) {
	redacted := []string{"token", "session_token", "password", "jwt_secret", "cookie", "api_key", "email", "user_email"}
	for _, key := range redacted {
		if !isRedactKey(key) {
			t.Fatalf("key %q must be redacted", key)
		}
	}
	clear := []string{"plan_id", "status", "route", "error"}
	for _, key := range clear {
		if isRedactKey(key) {
			t.Fatalf("key %q must not be redacted", key)
		}
	}
}

func TestSanitizeValue_RedactsAndHashes(t *testing.T) {
	if got := sanitizeValue("session_token", "abc123"); got != "[REDACTED]" {
		t.Fatalf("token value leaked: %v", got)
	}
	got := sanitizeValue("user_id", "11111111-2222-3333-4444-555555555555")
	s, ok := got.(string)
	if !ok || !strings.HasPrefix(s, "hash:") {
		t.Fatalf("user_id must be hashed, got %v", got)
	}
	if strings.Contains(s, "1111") {
		t.Fatalf("hash must not contain the raw id")
	}
	if got := sanitizeValue("plan_id", "p-1"); got != "p-1" {
		t.Fatalf("neutral key must pass through, got %v", got)
	}
}

func TestHashValue_StableAndShort(t *testing.T) {
	a := hashValue("same-input")
	b := hashValue("same-input")
	if a != b {
		t.Fatalf("hash must be stable for correlation: %q vs %q", a, b)
	}
	if len(a) != len("hash:")+12 {
		t.Fatalf("unexpected hash length: %q", a)
	}
	if hashValue("") != "" {
		t.Fatalf("empty value must stay empty")
	}
}

func TestSanitizeKVs_PreservesOddTrailingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"token", "secret-value", "dangling"})
	if len(out) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("token not redacted: %v", out[1])
	}
	if out[2] != "dangling" {
		t.Fatalf("trailing key lost: %v", out[2])
	}
}
