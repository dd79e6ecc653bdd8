// Package keystore manages the per-project symmetric key that seeds the
// manifest's envelope encryption: generation, on-disk persistence with
// owner-only permissions, and the public fingerprint used to compare keys
// across devices without ever exposing the key itself.
package keystore

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/axion-sh/axion/internal/crypto"
	"github.com/axion-sh/axion/internal/errs"
)

const (
	keySize     = 16 // 128-bit project key
	keyFileName = "key"
	dirMode     = 0700
	fileMode    = 0600
)

// Store reads and writes the project key file beneath dir/keyFileName.
type Store struct {
	dir string
}

// New returns a Store rooted at the project-local config directory (e.g.
// ".axion/"). The directory is created lazily on first write, not here.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, keyFileName)
}

// Generate creates a fresh random key and persists it, overwriting any
// existing key file. Callers that want rotation semantics (backup, verify,
// rollback) should use the manifest engine's Rotate instead of calling this
// directly.
func (s *Store) Generate() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := s.write(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Get reads the current project key. A missing file is reported as
// errs.KindNotInitialised so callers can prompt the user to run init.
func (s *Store) Get() ([]byte, error) {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.KindNotInitialised, "project key not found; run init first")
		}
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errs.Wrap(errs.KindNotInitialised, "key file is not valid hex", err)
	}
	return key, nil
}

// Show returns the key's hex encoding for an explicit reveal operation. It
// is named distinctly from Get so call sites make the intent to display
// secret material obvious at a glance.
func (s *Store) Show() (string, error) {
	key, err := s.Get()
	if err != nil {
		return "", err
	}
	defer crypto.Zero(key)
	return hex.EncodeToString(key), nil
}

// Fingerprint returns the leading 64 bits of SHA-256(key) as hex, safe to
// display and transmit.
func (s *Store) Fingerprint() (string, error) {
	key, err := s.Get()
	if err != nil {
		return "", err
	}
	defer crypto.Zero(key)
	return crypto.Fingerprint(key), nil
}

// Install overwrites the key file with key, creating the directory if
// necessary. Used by recovery restore and the manifest engine's rotation
// commit/rollback steps; it shares its write path with Generate.
func (s *Store) Install(key []byte) error {
	return s.write(key)
}

// Path exposes the key file's location for callers that need to reason
// about it directly, such as checking its permissions.
func (s *Store) Path() string {
	return s.path()
}

func (s *Store) write(key []byte) error {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return err
	}
	encoded := hex.EncodeToString(key) + "\n"
	return os.WriteFile(s.path(), []byte(encoded), fileMode)
}
