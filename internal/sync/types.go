// Package sync reconciles the local ciphertext manifest against its remote
// replica on load, and best-effort pushes it on save. The core never merges
// content; conflict resolution is by version number only.
package sync

import (
	"context"
	"time"

	"github.com/axion-sh/axion/internal/store"
)

// FetchResult is what fetchManifest returns: the cloud record plus an
// explicit signal distinguishing "no remote record yet" from a transport
// failure. The arbiter handles both the same way: it proceeds without a
// cloud copy.
type FetchResult struct {
	Record *store.CloudManifestRecord
	Found  bool
}

// HistoryEntry is one row of fetchHistory.
type HistoryEntry struct {
	Version        int64
	UpdatedAt      time.Time
	UpdatedBy      string
	KeyFingerprint string
}

// RemoteVault is the opaque remote API surface the arbiter depends on. The
// core treats its transport as an external collaborator; this interface is
// the seam a concrete HTTP client or a test double fills.
type RemoteVault interface {
	FetchManifest(ctx context.Context, projectID string) (FetchResult, error)
	UploadManifest(ctx context.Context, projectID string, encryptedData []byte, keyFingerprint string) error
	Pulse(ctx context.Context, projectID string) error
	FetchHistory(ctx context.Context, projectID string) ([]HistoryEntry, error)
	Rollback(ctx context.Context, projectID string, version int64) error
}
