package sdk

import (
	"context"

	"github.com/axion-sh/axion/internal/manifest"
)

// Client binds a single (workDir, service, scope) coordinate set and
// exposes it through a narrower get/getAll/has/reload surface, so a
// long-lived consumer doesn't have to thread Options through every call.
type Client struct {
	opts Options
}

// CreateClient binds opts. The first Get/GetAll/Has call populates the
// shared process cache exactly like GetSecrets would.
func CreateClient(opts Options) *Client {
	return &Client{opts: opts}
}

// Get returns the value for name, or ("", false) if it isn't set. If name
// is listed in the project's protected_keys policy, the returned value is
// maskedValue rather than the plaintext.
func (c *Client) Get(ctx context.Context, name string) (string, bool, error) {
	r, err := resolve(ctx, c.opts)
	if err != nil {
		return "", false, err
	}
	v, ok := r.vars[name]
	if ok && r.protected[name] {
		v = maskedValue
	}
	return v, ok, nil
}

// GetAll returns a defensive copy of the whole resolved set.
func (c *Client) GetAll(ctx context.Context) (manifest.VarMap, error) {
	return GetSecrets(ctx, c.opts)
}

// Has reports whether name is set, without exposing its value.
func (c *Client) Has(ctx context.Context, name string) (bool, error) {
	r, err := resolve(ctx, c.opts)
	if err != nil {
		return false, err
	}
	_, ok := r.vars[name]
	return ok, nil
}

// Reload invalidates this client's cache entry and re-resolves it.
func (c *Client) Reload(ctx context.Context) (manifest.VarMap, error) {
	ClearCacheFor(c.opts)
	return GetSecrets(ctx, c.opts)
}
