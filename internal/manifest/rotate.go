package manifest

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	axcrypto "github.com/axion-sh/axion/internal/crypto"
	"github.com/axion-sh/axion/internal/errs"
)

// KeyStore is the subset of keystore.Store rotation needs. Kept as a local
// interface so this package never imports internal/keystore directly.
type KeyStore interface {
	Get() ([]byte, error)
	Install(key []byte) error
}

// CiphertextStore is the subset of store.ManifestStore rotation needs.
type CiphertextStore interface {
	LoadEnvelope() (*axcrypto.Envelope, error)
	SaveEnvelope(env *axcrypto.Envelope) error
	Backup() error
	RestoreBackup() error
	DeleteBackup() error
	BackupPath() string
}

// RotationResult reports the key pair a rotation replaced.
type RotationResult struct {
	OldKey []byte
	NewKey []byte
}

const rotatedKeySize = 16 // 128-bit key, 32 hex chars

// Rotate performs crash-safe key rotation through the state machine
// Idle -> Backup -> KeyWritten -> Reencrypted -> Verified -> Committed,
// or a rollback path on any failure from KeyWritten onward. newKey may be
// nil to request a freshly generated key.
func Rotate(keys KeyStore, ciphertext CiphertextStore, newKey []byte) (*RotationResult, error) {
	// Idle: read current key, decrypt current manifest.
	oldKey, err := keys.Get()
	if err != nil {
		return nil, err
	}
	env, err := ciphertext.LoadEnvelope()
	if err != nil {
		return nil, err
	}
	plaintext, err := axcrypto.Decrypt(env, oldKey)
	if err != nil {
		return nil, err
	}
	defer axcrypto.Zero(plaintext)

	if newKey == nil {
		newKey = make([]byte, rotatedKeySize)
		if _, err := rand.Read(newKey); err != nil {
			return nil, err
		}
	} else if len(newKey) != rotatedKeySize {
		return nil, errs.New(errs.KindValidationFailed, "new key must be 128 bits (32 hex characters)")
	}

	// Backup.
	if err := ciphertext.Backup(); err != nil {
		return nil, err
	}

	// Anything from here on must roll back on failure.
	if rollbackErr := rotateCommit(keys, ciphertext, oldKey, newKey, plaintext, env); rollbackErr != nil {
		return nil, rollbackErr
	}

	return &RotationResult{OldKey: oldKey, NewKey: newKey}, nil
}

func rotateCommit(keys KeyStore, ciphertext CiphertextStore, oldKey, newKey, plaintext []byte, oldEnv *axcrypto.Envelope) error {
	// KeyWritten.
	if err := keys.Install(newKey); err != nil {
		return rollback(keys, ciphertext, oldKey, err)
	}

	// Reencrypted.
	newEnv, err := axcrypto.Encrypt(plaintext, newKey)
	if err != nil {
		return rollback(keys, ciphertext, oldKey, err)
	}
	if err := ciphertext.SaveEnvelope(newEnv); err != nil {
		return rollback(keys, ciphertext, oldKey, err)
	}

	// Verified: re-read, re-decrypt, compare against pre-rotation plaintext.
	readBack, err := ciphertext.LoadEnvelope()
	if err != nil {
		return rollback(keys, ciphertext, oldKey, err)
	}
	gotPlaintext, err := axcrypto.Decrypt(readBack, newKey)
	if err != nil {
		return rollback(keys, ciphertext, oldKey, err)
	}
	defer axcrypto.Zero(gotPlaintext)
	if !jsonEqual(gotPlaintext, plaintext) {
		return rollback(keys, ciphertext, oldKey,
			errs.New(errs.KindVerificationFailed, "post-rotation round-trip disagrees with pre-rotation manifest"))
	}

	// Committed.
	return ciphertext.DeleteBackup()
}

// rollback restores the backup ciphertext and the prior key, then surfaces
// the original failure unchanged. If the rollback itself fails, a composite
// error naming the backup path is surfaced instead.
func rollback(keys KeyStore, ciphertext CiphertextStore, oldKey []byte, cause error) error {
	restoreErr := ciphertext.RestoreBackup()
	installErr := keys.Install(oldKey)
	if restoreErr != nil || installErr != nil {
		return errs.Wrap(errs.KindVerificationFailed,
			fmt.Sprintf("rotation failed and rollback also failed (backup at %s)", ciphertext.BackupPath()),
			cause)
	}
	return cause
}

func jsonEqual(a, b []byte) bool {
	var va, vb interface{}
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return string(a) == string(b)
	}
	return deepEqual(va, vb)
}

func deepEqual(a, b interface{}) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
