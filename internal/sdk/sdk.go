// Package sdk is the in-process consumer surface: a process-local cache of
// resolved secret sets, keyed by the coordinates a caller resolves against,
// plus a client factory that binds those coordinates once.
package sdk

import (
	"context"
	"os"
	"sync"

	"github.com/axion-sh/axion/internal/manifest"
	"github.com/axion-sh/axion/internal/project"
)

// Options identifies a resolution target. Scope may be empty for the
// unscoped defaults.
type Options struct {
	WorkDir    string
	Service    string
	Scope      string
	CLIVersion string
	Overwrite  bool // LoadSecrets only: whether to overwrite pre-existing env vars
}

type cacheKey struct {
	workDir string
	service string
	scope   string
}

// resolution is one cache entry: the raw, unmasked variable set plus the
// set of names policy marks as protected, so a reveal call site can mask
// them without re-opening the project.
type resolution struct {
	vars      manifest.VarMap
	protected map[string]bool
}

var (
	mu    sync.Mutex
	cache = map[cacheKey]resolution{}
)

// maskedValue replaces a protected variable's value wherever it is
// revealed to a caller rather than injected into a running process.
const maskedValue = "[PROTECTED]"

func keyOf(opts Options) cacheKey {
	return cacheKey{workDir: opts.WorkDir, service: opts.Service, scope: opts.Scope}
}

func resolve(ctx context.Context, opts Options) (resolution, error) {
	k := keyOf(opts)

	mu.Lock()
	if cached, ok := cache[k]; ok {
		mu.Unlock()
		return cached, nil
	}
	mu.Unlock()

	p, err := project.Open(opts.WorkDir, opts.CLIVersion)
	if err != nil {
		return resolution{}, err
	}
	vars, err := p.Resolve(ctx, opts.Service, opts.Scope)
	if err != nil {
		return resolution{}, err
	}
	r := resolution{vars: vars, protected: p.ProtectedKeys()}

	mu.Lock()
	cache[k] = r
	mu.Unlock()
	return r, nil
}

// maskedCopy returns a defensive copy of vars with every key in protected
// replaced by maskedValue.
func maskedCopy(vars manifest.VarMap, protected map[string]bool) manifest.VarMap {
	out := make(manifest.VarMap, len(vars))
	for k, v := range vars {
		if protected[k] {
			out[k] = maskedValue
			continue
		}
		out[k] = v
	}
	return out
}

// GetSecrets resolves opts and returns a defensive copy: callers may mutate
// the returned map without affecting the cache or later callers. Variables
// named in the project's protected_keys policy are returned as
// maskedValue rather than in plaintext.
func GetSecrets(ctx context.Context, opts Options) (manifest.VarMap, error) {
	r, err := resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	return maskedCopy(r.vars, r.protected), nil
}

// LoadSecrets resolves opts and writes the result into the ambient process
// environment, preserving pre-existing keys unless opts.Overwrite is set.
// Protected keys are injected unmasked: this feeds a running process, not
// a human or logging sink.
func LoadSecrets(ctx context.Context, opts Options) error {
	r, err := resolve(ctx, opts)
	if err != nil {
		return err
	}
	for k, v := range r.vars {
		if !opts.Overwrite {
			if _, exists := os.LookupEnv(k); exists {
				continue
			}
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// ClearCache invalidates every cached resolution.
func ClearCache() {
	mu.Lock()
	defer mu.Unlock()
	cache = map[cacheKey]resolution{}
}

// ClearCacheFor invalidates the cache entry for one set of coordinates.
func ClearCacheFor(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	delete(cache, keyOf(opts))
}
