// Package services holds stateless helpers shared by the use cases.
package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the lowercase hex SHA-256 digest of password.
// Unsalted and deterministic: the users table is looked up by digest.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// PasswordMatches compares password against a stored digest in constant time.
func PasswordMatches(digest, password string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(HashPassword(password))) == 1
}

// PlaceholderDigest is stored for users created implicitly by telemetry
// submission. It is the digest of the empty password, which login rejects.
var PlaceholderDigest = HashPassword("")
