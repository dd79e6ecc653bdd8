package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestIDGeneratesAndPersists(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	reset()

	id, err := ID()
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid uuid, got %q: %v", id, err)
	}

	path := filepath.Join(home, globalDirName, idFileName)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat device-id: %v", err)
	}
	if info.Mode().Perm() != fileMode {
		t.Fatalf("expected mode %o, got %o", fileMode, info.Mode().Perm())
	}

	reset()
	id2, err := ID()
	if err != nil {
		t.Fatalf("id second call: %v", err)
	}
	if id2 != id {
		t.Fatal("expected persisted id to survive cache reset")
	}
}

func TestIDRegeneratesOnMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	reset()

	path := filepath.Join(home, globalDirName, idFileName)
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not-a-uuid\n"), fileMode); err != nil {
		t.Fatalf("write: %v", err)
	}

	id, err := ID()
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected regenerated id to be valid, got %q", id)
	}
}
