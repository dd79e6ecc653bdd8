package keystore

import (
	"encoding/base64"

	"github.com/axion-sh/axion/internal/crypto"
	"github.com/axion-sh/axion/internal/errs"
)

// RecoverySetup wraps the current project key in a password-encrypted,
// portable capsule: base64(envelope(encrypt(currentKey, password))). The
// result is safe to print or store outside the project, since
// it discloses nothing without the recovery password.
func (s *Store) RecoverySetup(password []byte) (string, error) {
	key, err := s.Get()
	if err != nil {
		return "", err
	}
	defer crypto.Zero(key)

	env, err := crypto.Encrypt(key, password)
	if err != nil {
		return "", err
	}
	raw, err := crypto.Marshal(env)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// RecoveryRestore decodes and decrypts blob under password and installs the
// recovered key, replacing any existing key file with mode 0600.
func (s *Store) RecoveryRestore(password []byte, blob string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidationFailed, "recovery blob is not valid base64", err)
	}
	env, err := crypto.Unmarshal(raw)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidationFailed, "recovery blob is not a valid envelope", err)
	}
	key, err := crypto.Decrypt(env, password)
	if err != nil {
		return nil, err
	}
	if err := s.Install(key); err != nil {
		crypto.Zero(key)
		return nil, err
	}
	return key, nil
}
