// Package project wires the core's independently-testable pieces —
// keystore, manifest store, manifest engine, config policy, and the sync
// arbiter — into the single object the SDK surface and process injector
// are actually driven through: a project rooted at a working directory's
// `.axion/` config directory.
package project

import (
	"context"
	"os"
	"path/filepath"

	"github.com/axion-sh/axion/internal/config"
	"github.com/axion-sh/axion/internal/errs"
	"github.com/axion-sh/axion/internal/keystore"
	"github.com/axion-sh/axion/internal/manifest"
	"github.com/axion-sh/axion/internal/store"
	"github.com/axion-sh/axion/internal/sync"
)

// Environment variables that short-circuit or override the project's
// file-sourced credentials and remote endpoint, for unattended/CI use
// where no device-code login has ever run on the machine.
const (
	envToken      = "AXION_TOKEN"
	envServiceTok = "SERVICE_TOKEN"
	envAPIURL     = "AXION_API_URL"
)

// resolvedToken returns the bearer token to authenticate sync calls with:
// AXION_TOKEN or SERVICE_TOKEN from the environment short-circuit the
// token on disk in credentials.json, in that order.
func resolvedToken(fileToken string) string {
	if v := os.Getenv(envToken); v != "" {
		return v
	}
	if v := os.Getenv(envServiceTok); v != "" {
		return v
	}
	return fileToken
}

// resolvedAPIURL returns the remote vault endpoint: AXION_API_URL from the
// environment overrides the one recorded in cloud.json.
func resolvedAPIURL(fileURL string) string {
	if v := os.Getenv(envAPIURL); v != "" {
		return v
	}
	return fileURL
}

const configDirName = ".axion"
const configFileName = "config.yaml"

// Project is a project rooted at workDir. It owns the key store, the
// ciphertext store, the config policy, and a sync arbiter; the arbiter
// reconciles against the remote vault only when cloud.json names a
// project ID, and works on the local ciphertext alone otherwise.
type Project struct {
	workDir string
	dir     string
	keys    *keystore.Store
	store   *store.ManifestStore
	policy  *config.Policy
	arbiter *sync.Arbiter
}

// Open resolves the project rooted at workDir. It never fails on a missing
// key or manifest: a missing key surfaces lazily as
// *errs.Error{Kind: KindNotInitialised} from Resolve and the mutation
// methods, and a missing manifest loads as an empty one.
func Open(workDir string, cliVersion string) (*Project, error) {
	dir := filepath.Join(workDir, configDirName)

	policy, err := config.Load(filepath.Join(dir, configFileName))
	if err != nil {
		return nil, err
	}

	p := &Project{
		workDir: workDir,
		dir:     dir,
		keys:    keystore.New(dir),
		store:   store.New(dir),
		policy:  policy,
	}

	link, err := store.LoadCloudLink(dir)
	if err != nil {
		return nil, err
	}
	if link != nil && link.ProjectID != "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		creds, err := config.LoadCredentials(filepath.Join(home, configDirName))
		if err != nil {
			return nil, err
		}
		p.arbiter = &sync.Arbiter{
			Ciphertext: p.store,
			Remote:     sync.NewHTTPClient(resolvedAPIURL(link.APIURL), resolvedToken(creds.AccessToken()), cliVersion),
			ProjectID:  link.ProjectID,
		}
	} else {
		p.arbiter = &sync.Arbiter{Ciphertext: p.store}
	}

	return p, nil
}

// key loads the project key, surfacing *errs.Error{Kind: KindNotInitialised}
// when init has never run.
func (p *Project) key() ([]byte, error) {
	return p.keys.Get()
}

// load reconciles local/cloud and returns a ready manifest engine.
func (p *Project) load(ctx context.Context) (*manifest.Engine, error) {
	key, err := p.key()
	if err != nil {
		return nil, err
	}
	result, err := p.arbiter.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return manifest.NewEngine(result.Manifest, p.policy), nil
}

// save persists the engine's manifest and best-effort pushes to cloud.
func (p *Project) save(ctx context.Context, engine *manifest.Engine) error {
	key, err := p.key()
	if err != nil {
		return err
	}
	return p.arbiter.Save(ctx, engine.Manifest(), key)
}

// Resolve returns the fully-overlaid, template-resolved variable set for
// (service, scope), with overrides loaded from the project's `.env`
// override file if present. The result is unmasked; callers that reveal
// values to something other than a running process (sdk.GetSecrets and the
// Client read surface) are responsible for applying ProtectedKeys.
func (p *Project) Resolve(ctx context.Context, service, scope string) (manifest.VarMap, error) {
	engine, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := manifest.LoadOverrides(filepath.Join(p.workDir, ".env"))
	if err != nil {
		return nil, err
	}
	engine.SetOverrides(overrides)
	return engine.GetVariables(service, scope)
}

// ProtectedKeys returns the set of variable names the project's policy
// marks as never returnable by a reveal operation.
func (p *Project) ProtectedKeys() map[string]bool {
	return p.policy.ProtectedKeys
}

// SetVariable mutates and persists the manifest.
func (p *Project) SetVariable(ctx context.Context, name, value, service, scope string) error {
	engine, err := p.load(ctx)
	if err != nil {
		return err
	}
	if err := engine.SetVariable(name, value, service, scope); err != nil {
		return err
	}
	return p.save(ctx, engine)
}

// RemoveVariable mutates and persists the manifest. It reports whether the
// variable existed.
func (p *Project) RemoveVariable(ctx context.Context, name, service, scope string) (bool, error) {
	engine, err := p.load(ctx)
	if err != nil {
		return false, err
	}
	removed := engine.RemoveVariable(name, service, scope)
	if !removed {
		return false, nil
	}
	return true, p.save(ctx, engine)
}

// Rotate runs crash-safe key rotation and persists nothing else: the
// manifest is re-encrypted under the new key in place by manifest.Rotate.
func (p *Project) Rotate(newKey []byte) (*manifest.RotationResult, error) {
	return manifest.Rotate(p.keys, p.store, newKey)
}

// Init creates a fresh project: generates the key and writes an empty
// manifest, failing if one already exists.
func (p *Project) Init(ctx context.Context) error {
	if p.store.Exists() {
		return errs.New(errs.KindValidationFailed, "project already initialised")
	}
	if _, err := p.keys.Generate(); err != nil {
		return err
	}
	m := manifest.New()
	return p.save(ctx, manifest.NewEngine(m, p.policy))
}
