package auth

import (
	"errors"
	"testing"
)

func TestHMACAuthenticator_RoundTrip(t *testing.T) {
	a := NewHMACAuthenticator("test-secret")

	token := a.Token("user-123")
	userID, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}
}

func TestHMACAuthenticator_UserIDWithColons(t *testing.T) {
	a := NewHMACAuthenticator("test-secret")

	token := a.Token("ext:install:42")
	userID, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if userID != "ext:install:42" {
		t.Errorf("userID = %q, want ext:install:42", userID)
	}
}

func TestHMACAuthenticator_Invalid(t *testing.T) {
	a := NewHMACAuthenticator("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "user-123"},
		{"empty user", ":deadbeef"},
		{"empty signature", "user-123:"},
		{"non-hex signature", "user-123:not-hex!"},
		{"wrong signature", "user-123:deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"},
		{"other secret", NewHMACAuthenticator("other-secret").Token("user-123")},
		{"tampered user", "user-456:" + NewHMACAuthenticator("test-secret").Token("user-123")[len("user-123:"):]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Authenticate(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}
