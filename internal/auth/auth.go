// Package auth verifies the bearer tokens issued to browser-extension
// installs. A token is "<user_id>:<signature>" where the signature is a
// hex-encoded HMAC-SHA256 of the user id under the shared server secret.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidToken is returned for malformed or incorrectly signed tokens.
var ErrInvalidToken = errors.New("invalid auth token")

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// HMACAuthenticator verifies tokens signed with a shared secret.
type HMACAuthenticator struct {
	secret []byte
}

// NewHMACAuthenticator creates an authenticator for the given shared secret.
func NewHMACAuthenticator(secret string) *HMACAuthenticator {
	return &HMACAuthenticator{secret: []byte(secret)}
}

// Authenticate validates the token signature and returns the embedded user id.
func (a *HMACAuthenticator) Authenticate(token string) (string, error) {
	// user ids may contain colons, so split on the last one
	i := strings.LastIndexByte(token, ':')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}
	userID, signature := token[:i], token[i+1:]

	want, err := hex.DecodeString(signature)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal(want, a.sign(userID)) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Token builds a signed token for the user id. Used by provisioning tooling
// and tests.
func (a *HMACAuthenticator) Token(userID string) string {
	return userID + ":" + hex.EncodeToString(a.sign(userID))
}

func (a *HMACAuthenticator) sign(userID string) []byte {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(userID))
	return mac.Sum(nil)
}
