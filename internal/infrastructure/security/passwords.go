package security

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier compares candidate passwords against a configured
// reference. The reference may be supplied already bcrypt-hashed or as
// plaintext; plaintext is hashed once on first use and the hash cached
// for the process lifetime.
type PasswordVerifier struct {
	reference string

	once   sync.Once
	hash   []byte
	hashed bool
}

// NewPasswordVerifier creates a verifier for the configured reference
// password. An empty reference rejects every candidate.
func NewPasswordVerifier(reference string) *PasswordVerifier {
	return &PasswordVerifier{reference: reference}
}

func (v *PasswordVerifier) prepare() {
	if v.reference == "" {
		return
	}
	if isBcryptHash(v.reference) {
		v.hash = []byte(v.reference)
		v.hashed = true
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(v.reference), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	v.hash = hash
	v.hashed = true
}

// Verify reports whether the candidate matches the reference password.
func (v *PasswordVerifier) Verify(candidate string) bool {
	v.once.Do(v.prepare)
	if !v.hashed || candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(candidate)) == nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
