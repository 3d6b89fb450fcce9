package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SessionClaims is the signed payload carried by the admin session cookie.
type SessionClaims struct {
	Username  string `json:"username"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ErrNoSecret indicates the signing secret is not configured. Token
// issuance refuses to proceed without one.
var ErrNoSecret = errors.New("auth secret not configured")

// errInvalidSession covers every verification failure. Callers must not
// be able to distinguish which check rejected the token.
var errInvalidSession = errors.New("no valid session")

// IssueSessionToken produces an admin session token for a verified
// username: base64url(JSON claims) + "." + hex(HMAC-SHA256 over the
// encoded claims).
func IssueSessionToken(username, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}

	claims := SessionClaims{
		Username:  username,
		IssuedAt:  now.UTC().Unix(),
		ExpiresAt: now.UTC().Add(ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + signPayload(encoded, secret), nil
}

// VerifySessionToken validates a session token and returns its claims.
// Every rejection (malformed token, bad signature, expired claims, or a
// username that no longer matches the configured admin) yields the same
// opaque error.
func VerifySessionToken(token, secret, expectUsername string, now time.Time) (*SessionClaims, error) {
	if secret == "" {
		return nil, errInvalidSession
	}

	encoded, signature, found := strings.Cut(token, ".")
	if !found || encoded == "" || signature == "" {
		return nil, errInvalidSession
	}

	expected := signPayload(encoded, secret)
	if len(signature) != len(expected) {
		return nil, errInvalidSession
	}
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, errInvalidSession
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errInvalidSession
	}

	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errInvalidSession
	}

	if now.UTC().Unix() >= claims.ExpiresAt {
		return nil, errInvalidSession
	}
	if claims.Username != expectUsername {
		return nil, errInvalidSession
	}

	return &claims, nil
}

func signPayload(encoded, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
