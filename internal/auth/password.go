package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the bcrypt work factor. 10 keeps login latency acceptable
// on modest hardware while staying expensive enough to resist offline
// brute force. Raising it transparently re-hashes nothing — existing
// hashes keep the cost they were created with.
const bcryptCost = 10

// hashPassword creates a salted bcrypt hash of the given password. The salt
// is embedded in the hash string, so verification needs no separate storage.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// verifyPassword checks a plaintext password against a stored bcrypt hash.
// Returns false on mismatch and on malformed hashes — it never fails loudly,
// so a corrupted hash behaves exactly like a wrong password.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
