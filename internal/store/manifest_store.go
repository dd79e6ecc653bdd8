// Package store persists the manifest's ciphertext envelope to disk and
// models its remote replica, the cloud manifest record.
package store

import (
	"os"
	"path/filepath"

	"github.com/axion-sh/axion/internal/crypto"
)

const (
	manifestFileName = "manifest.enc"
	backupSuffix     = ".backup"
	manifestMode     = 0644
)

// ManifestStore loads and saves the ciphertext manifest file beneath a
// project-local config directory.
type ManifestStore struct {
	dir string
}

// New returns a ManifestStore rooted at dir (the project config directory).
func New(dir string) *ManifestStore {
	return &ManifestStore{dir: dir}
}

func (s *ManifestStore) path() string {
	return filepath.Join(s.dir, manifestFileName)
}

// Path exposes the ciphertext file's location. The sibling backup path is
// derived from it and exposed separately as BackupPath.
func (s *ManifestStore) Path() string {
	return s.path()
}

func (s *ManifestStore) backupPath() string {
	return s.path() + backupSuffix
}

// Exists reports whether a ciphertext manifest is present.
func (s *ManifestStore) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// LoadEnvelope reads and parses the ciphertext file. A missing file returns
// os.ErrNotExist wrapped by the caller's handling, matching the arbiter's
// "on not-found, local = null" step.
func (s *ManifestStore) LoadEnvelope() (*crypto.Envelope, error) {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		return nil, err
	}
	return crypto.Unmarshal(raw)
}

// SaveEnvelope serialises env and writes it with mode 0644, creating the
// project config directory if necessary.
func (s *ManifestStore) SaveEnvelope(env *crypto.Envelope) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	raw, err := crypto.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), raw, manifestMode)
}

// Backup copies the current ciphertext file to its sibling .backup path,
// used as rotation step 3.
func (s *ManifestStore) Backup() error {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		return err
	}
	return os.WriteFile(s.backupPath(), raw, manifestMode)
}

// RestoreBackup overwrites the ciphertext file with the sibling .backup
// file's contents, used on rotation rollback.
func (s *ManifestStore) RestoreBackup() error {
	raw, err := os.ReadFile(s.backupPath())
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), raw, manifestMode)
}

// DeleteBackup removes the sibling .backup file after a successful
// rotation. A missing backup is not an error.
func (s *ManifestStore) DeleteBackup() error {
	err := os.Remove(s.backupPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// BackupPath exposes the sibling .backup path for error messages that must
// name it.
func (s *ManifestStore) BackupPath() string {
	return s.backupPath()
}
