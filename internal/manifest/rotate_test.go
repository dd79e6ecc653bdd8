package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	axcrypto "github.com/axion-sh/axion/internal/crypto"
	"github.com/axion-sh/axion/internal/keystore"
	"github.com/axion-sh/axion/internal/store"
)

func setupProject(t *testing.T, plaintext []byte) (*keystore.Store, *store.ManifestStore, []byte) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".axion")
	ks := keystore.New(dir)
	ms := store.New(dir)

	key, err := ks.Generate()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	env, err := axcrypto.Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := ms.SaveEnvelope(env); err != nil {
		t.Fatalf("save envelope: %v", err)
	}
	return ks, ms, key
}

func TestRotateSucceedsAndUpdatesKeyAndManifest(t *testing.T) {
	plaintext := []byte(`{"version":"1.0","services":{"_global":{"FOO":"bar"}},"scopes":{}}`)
	ks, ms, oldKey := setupProject(t, plaintext)

	result, err := Rotate(ks, ms, nil)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if bytes.Equal(result.OldKey, result.NewKey) {
		t.Fatal("expected a different new key")
	}
	if !bytes.Equal(result.OldKey, oldKey) {
		t.Fatal("expected returned old key to match the original")
	}

	storedKey, err := ks.Get()
	if err != nil {
		t.Fatalf("get key after rotation: %v", err)
	}
	if !bytes.Equal(storedKey, result.NewKey) {
		t.Fatal("expected key file to hold the new key")
	}

	env, err := ms.LoadEnvelope()
	if err != nil {
		t.Fatalf("load envelope after rotation: %v", err)
	}
	got, err := axcrypto.Decrypt(env, result.NewKey)
	if err != nil {
		t.Fatalf("decrypt with new key: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("plaintext changed across rotation")
	}

	if _, err := os.Stat(ms.BackupPath()); !os.IsNotExist(err) {
		t.Fatal("expected backup file to be removed after successful rotation")
	}
}

func TestRotateWithSuppliedKey(t *testing.T) {
	plaintext := []byte(`{"version":"1.0","services":{"_global":{}},"scopes":{}}`)
	ks, ms, _ := setupProject(t, plaintext)

	newKey := make([]byte, rotatedKeySize)
	for i := range newKey {
		newKey[i] = byte(i)
	}
	result, err := Rotate(ks, ms, newKey)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if !bytes.Equal(result.NewKey, newKey) {
		t.Fatal("expected supplied key to be installed")
	}
}

func TestRotateRejectsWrongSizeKey(t *testing.T) {
	plaintext := []byte(`{"version":"1.0","services":{"_global":{}},"scopes":{}}`)
	ks, ms, _ := setupProject(t, plaintext)

	if _, err := Rotate(ks, ms, []byte("too-short")); err == nil {
		t.Fatal("expected error for wrong-size key")
	}
}

// failingCiphertextStore wraps a real store but fails SaveEnvelope, forcing
// the rollback path.
type failingCiphertextStore struct {
	*store.ManifestStore
}

func (f failingCiphertextStore) SaveEnvelope(env *axcrypto.Envelope) error {
	return os.ErrPermission
}

func TestRotateRollsBackOnReencryptFailure(t *testing.T) {
	plaintext := []byte(`{"version":"1.0","services":{"_global":{"FOO":"bar"}},"scopes":{}}`)
	ks, ms, oldKey := setupProject(t, plaintext)
	failing := failingCiphertextStore{ms}

	_, err := Rotate(ks, failing, nil)
	if err == nil {
		t.Fatal("expected rotation to fail")
	}

	restoredKey, getErr := ks.Get()
	if getErr != nil {
		t.Fatalf("get key after rollback: %v", getErr)
	}
	if !bytes.Equal(restoredKey, oldKey) {
		t.Fatal("expected key file to be rolled back to the old key")
	}

	env, loadErr := ms.LoadEnvelope()
	if loadErr != nil {
		t.Fatalf("load envelope after rollback: %v", loadErr)
	}
	got, decErr := axcrypto.Decrypt(env, oldKey)
	if decErr != nil {
		t.Fatalf("decrypt with old key after rollback: %v", decErr)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("manifest not restored to pre-rotation plaintext")
	}
}
