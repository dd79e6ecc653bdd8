// Package device manages the persistent, anonymous device identifier and
// the host metadata envelope attached to authenticated remote calls.
package device

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	globalDirName = ".axion"
	idFileName    = "device-id"
	dirMode       = 0700
	fileMode      = 0600
)

var (
	cacheMu sync.Mutex
	cached  string
)

// ID returns the persistent device identifier, generating and persisting a
// fresh v4 UUID on first use or if the existing file is malformed. The
// result is cached in memory for the process lifetime.
func ID() (string, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached != "" {
		return cached, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(home, globalDirName, idFileName)

	if raw, err := os.ReadFile(path); err == nil {
		if id, parseErr := uuid.Parse(strings.TrimSpace(string(raw))); parseErr == nil {
			cached = id.String()
			return cached, nil
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), fileMode); err != nil {
		return "", err
	}
	cached = id
	return cached, nil
}

// reset clears the in-process cache. Test-only.
func reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cached = ""
}
