package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the leading 64 bits of SHA-256(key) as lowercase hex,
// used to compare keys across devices without ever transmitting the key
// itself.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
