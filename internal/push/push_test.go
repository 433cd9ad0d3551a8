package push

import (
	"encoding/base64"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// Public key is a base64url-encoded uncompressed P-256 point
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) == 0 || len(privBytes) > 32 {
		t.Errorf("private key length = %d, want at most 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestReminderBody(t *testing.T) {
	tests := []struct {
		overdue, dueSoon int
		want             string
	}{
		{2, 3, "2 overdue and 3 due soon"},
		{1, 0, "1 overdue"},
		{0, 4, "4 due soon"},
	}
	for _, tt := range tests {
		if got := reminderBody(tt.overdue, tt.dueSoon); got != tt.want {
			t.Errorf("reminderBody(%d, %d) = %q, want %q", tt.overdue, tt.dueSoon, got, tt.want)
		}
	}
}
