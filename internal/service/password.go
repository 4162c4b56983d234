package service

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the SHA-1 hex digest of a password. The digest format
// is shared with pre-existing user records, so it must not change without a
// migration.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// verifyPassword compares a password against a stored digest in constant
// time.
func verifyPassword(password, storedHash string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
