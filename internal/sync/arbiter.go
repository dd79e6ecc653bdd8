package sync

import (
	"context"
	"os"

	"github.com/axion-sh/axion/internal/corelog"
	axcrypto "github.com/axion-sh/axion/internal/crypto"
	"github.com/axion-sh/axion/internal/manifest"
	"github.com/axion-sh/axion/internal/store"
)

// LoadResult is what Arbiter.Load returns: the reconciled manifest plus a
// diagnostic set of non-fatal conditions the caller may want to surface
// explicitly, such as an unreadable local manifest that still leaves a
// usable cloud copy to fall back on.
type LoadResult struct {
	Manifest *manifest.Manifest
	Warnings []string
}

// Arbiter reconciles the local ciphertext manifest against its remote
// replica on load, and best-effort pushes it on save. It never merges
// content; conflict resolution is by version number only.
type Arbiter struct {
	Ciphertext *store.ManifestStore
	Remote     RemoteVault // nil when the project is not cloud-linked
	ProjectID  string
}

// Load reads the local ciphertext manifest and, if the project is
// cloud-linked, the remote copy, and reconciles them by comparing version
// numbers: the higher version wins, and a tie favours the cloud copy.
func (a *Arbiter) Load(ctx context.Context, key []byte) (LoadResult, error) {
	var result LoadResult
	local, localErr := a.loadLocal(key)
	if localErr != nil {
		result.Warnings = append(result.Warnings, "local manifest unreadable: "+localErr.Error())
	}

	cloud := a.loadCloud(ctx, key, &result)

	switch {
	case local == nil && cloud == nil:
		return LoadResult{Manifest: manifest.New(), Warnings: result.Warnings}, nil
	case local == nil:
		result.Manifest = cloud
	case cloud == nil:
		result.Manifest = local
	default:
		localVersion := manifest.ParseVersion(local.Version)
		cloudVersion := manifest.ParseVersion(cloud.Version)
		if localVersion > cloudVersion {
			result.Manifest = local
		} else {
			// Ties resolve to cloud.
			result.Manifest = cloud
		}
	}
	return result, nil
}

func (a *Arbiter) loadLocal(key []byte) (*manifest.Manifest, error) {
	env, err := a.Ciphertext.LoadEnvelope()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	plaintext, err := axcrypto.Decrypt(env, key)
	if err != nil {
		return nil, err
	}
	defer axcrypto.Zero(plaintext)
	return manifest.Unmarshal(plaintext)
}

func (a *Arbiter) loadCloud(ctx context.Context, key []byte, result *LoadResult) *manifest.Manifest {
	if a.Remote == nil || a.ProjectID == "" {
		return nil
	}
	if err := a.Remote.Pulse(ctx, a.ProjectID); err != nil {
		result.Warnings = append(result.Warnings, "heartbeat failed: "+err.Error())
	}

	fetched, err := a.Remote.FetchManifest(ctx, a.ProjectID)
	if err != nil || !fetched.Found || fetched.Record == nil {
		return nil
	}

	env, err := axcrypto.Unmarshal(fetched.Record.EncryptedData)
	if err != nil {
		return nil
	}
	fingerprint := axcrypto.Fingerprint(key)
	if fetched.Record.KeyFingerprint != "" && fetched.Record.KeyFingerprint != fingerprint {
		corelog.Warn("cloud key fingerprint mismatch", map[string]interface{}{
			"localFingerprint": fingerprint,
			"cloudFingerprint": fetched.Record.KeyFingerprint,
		})
	}
	plaintext, err := axcrypto.Decrypt(env, key)
	if err != nil {
		return nil
	}
	defer axcrypto.Zero(plaintext)
	m, err := manifest.Unmarshal(plaintext)
	if err != nil {
		return nil
	}
	return m
}

// Save bumps the manifest's version, writes it locally, then best-effort
// uploads to the remote vault if the project is cloud-linked. Transport
// failures never fail the call; the local write already succeeded and is
// authoritative.
func (a *Arbiter) Save(ctx context.Context, m *manifest.Manifest, key []byte) error {
	m.BumpVersion()
	plaintext, err := manifest.Marshal(m)
	if err != nil {
		return err
	}
	env, err := axcrypto.Encrypt(plaintext, key)
	if err != nil {
		return err
	}
	if err := a.Ciphertext.SaveEnvelope(env); err != nil {
		return err
	}

	if a.Remote == nil || a.ProjectID == "" {
		return nil
	}
	raw, err := axcrypto.Marshal(env)
	if err != nil {
		return nil // local write already succeeded; swallow serialise failure too
	}
	if err := a.Remote.UploadManifest(ctx, a.ProjectID, raw, axcrypto.Fingerprint(key)); err != nil {
		corelog.Warn("cloud push failed, local write is authoritative", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}
