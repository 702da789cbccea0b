package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// RecoveryTokenBytes is the entropy of a password recovery token (256 bits).
const RecoveryTokenBytes = 32

// GenerateRecoveryToken returns a new random recovery token as 64 lowercase hex characters.
func GenerateRecoveryToken() (string, error) {
	b := make([]byte, RecoveryTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashRecoveryToken returns the hex SHA-256 of token. Only the hash is stored,
// so a leaked users table does not yield usable reset links.
func HashRecoveryToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// RecoveryTokenHashEqual reports whether token hashes to storedHash using a constant-time compare.
func RecoveryTokenHashEqual(token, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRecoveryToken(token)), []byte(storedHash)) == 1
}
