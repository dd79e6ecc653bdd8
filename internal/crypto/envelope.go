package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/axion-sh/axion/internal/errs"
)

// CurrentVersion is the envelope format this core writes. Version 1 is the
// XChaCha20-Poly1305 format handled by legacy.go; a version greater than
// CurrentVersion is rejected outright so an old client never silently
// mis-decrypts a manifest sealed by a newer, unknown scheme.
const CurrentVersion = 2

const (
	ivSize  = 16 // 128-bit nonce
	tagSize = 16 // 128-bit authentication tag
)

// Envelope is the self-describing ciphertext bundle persisted on disk and
// transmitted to the remote vault. Every field round-trips through JSON
// with hex-encoded byte fields, so a decryptor never needs out-of-band
// parameters.
type Envelope struct {
	Version   int           `json:"version"`
	KDF       string        `json:"kdf"`
	KDFParams KDFParamsWire `json:"kdfParams"`
	IV        string        `json:"iv"`
	Salt      string        `json:"salt"`
	AuthTag   string        `json:"authTag"`
	Content   string        `json:"content"`
}

// KDFParamsWire is the JSON-serializable projection of KDFParams (the salt
// travels in Envelope.Salt, not duplicated here).
type KDFParamsWire struct {
	MemoryKiB   uint32 `json:"memoryKiB"`
	Time        uint32 `json:"time"`
	Parallelism uint8  `json:"parallelism"`
}

// Encrypt seals plaintext under a key derived from password with fresh
// Argon2id parameters (fresh salt, fresh IV every call — invariant #3).
func Encrypt(plaintext, password []byte) (*Envelope, error) {
	params, err := DefaultKDFParams()
	if err != nil {
		return nil, err
	}
	return EncryptWithParams(plaintext, password, params)
}

// EncryptWithParams seals plaintext with caller-supplied KDF parameters;
// Encrypt delegates here with DefaultKDFParams. The IV is always freshly
// random, whatever the parameters.
func EncryptWithParams(plaintext, password []byte, params KDFParams) (*Envelope, error) {
	key := DeriveKey(password, params)
	defer Zero(key)

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	content := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return &Envelope{
		Version: CurrentVersion,
		KDF:     "argon2id",
		KDFParams: KDFParamsWire{
			MemoryKiB:   params.MemoryKiB,
			Time:        params.Time,
			Parallelism: params.Parallelism,
		},
		IV:      hex.EncodeToString(iv),
		Salt:    hex.EncodeToString(params.Salt),
		AuthTag: hex.EncodeToString(tag),
		Content: hex.EncodeToString(content),
	}, nil
}

// Decrypt opens an envelope produced by Encrypt (or its legacy predecessor)
// under a key re-derived from password using the envelope's own recorded
// parameters.
func Decrypt(env *Envelope, password []byte) ([]byte, error) {
	if env.Version > CurrentVersion {
		return nil, errs.New(errs.KindUnsupportedVersion,
			"envelope version exceeds this client's supported version; upgrade required")
	}
	if env.Version == 1 {
		return decryptLegacy(env, password)
	}

	salt, err := hex.DecodeString(env.Salt)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed salt", err)
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed iv", err)
	}
	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed auth tag", err)
	}
	content, err := hex.DecodeString(env.Content)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed content", err)
	}

	params := KDFParams{
		MemoryKiB:   env.KDFParams.MemoryKiB,
		Time:        env.KDFParams.Time,
		Parallelism: env.KDFParams.Parallelism,
		Salt:        salt,
	}
	key := DeriveKey(password, params)
	defer Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte(nil), content...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "gcm tag verification failed", err)
	}
	return plaintext, nil
}

// Marshal/Unmarshal round-trip an Envelope through the JSON wire format.
// Field order is not significant.
func Marshal(env *Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}

func Unmarshal(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
