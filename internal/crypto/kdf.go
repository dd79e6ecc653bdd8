// Package crypto implements the envelope encryption and key derivation used
// to seal a project manifest at rest: Argon2id for password stretching,
// AES-256-GCM for the current envelope format, with a decrypt-only fallback
// for the format it replaced.
package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

// KDFParams are the Argon2id parameters recorded verbatim in every envelope
// so a future decryption reproduces the exact key used to seal it.
type KDFParams struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint8
	Salt        []byte
}

// DefaultKDFParams returns the OWASP-floor Argon2id parameters: 64 MiB of
// memory, 3 iterations, 4 lanes, a fresh 256-bit salt.
func DefaultKDFParams() (KDFParams, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return KDFParams{}, err
	}
	return KDFParams{MemoryKiB: 65536, Time: 3, Parallelism: 4, Salt: salt}, nil
}

// DeriveKey runs Argon2id over password with the given parameters, producing
// a 32-byte key suitable for AES-256-GCM.
func DeriveKey(password []byte, p KDFParams) []byte {
	return argon2.IDKey(password, p.Salt, p.Time, p.MemoryKiB, p.Parallelism, 32)
}
