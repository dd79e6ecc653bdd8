package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/axion-sh/axion/internal/device"
	"github.com/axion-sh/axion/internal/errs"
	"github.com/axion-sh/axion/internal/store"
)

// defaultRateLimit throttles outbound calls to the remote vault so a
// pathological retry loop in a caller never hammers the server; adapted
// client-side from the server's per-IP limiter (one bucket is enough here,
// since every call from this process shares the same caller identity).
const (
	defaultRateLimit = rate.Limit(5)
	defaultBurst     = 10
)

// HTTPClient implements RemoteVault over the opaque cloud HTTP API. Every
// authenticated request carries a bearer token and the device metadata
// envelope.
type HTTPClient struct {
	baseURL     string
	accessToken string
	cliVersion  string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewHTTPClient builds a client against baseURL, authenticating with
// accessToken (from stored credentials or the SERVICE_TOKEN/AXION_TOKEN
// environment variable).
func NewHTTPClient(baseURL, accessToken, cliVersion string) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		cliVersion:  cliVersion,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(defaultRateLimit, defaultBurst),
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.Wrap(errs.KindNetworkUnreachable, "rate limiter wait cancelled", err)
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	meta, err := device.CurrentMetadata(c.cliVersion)
	if err == nil {
		if encoded, mErr := json.Marshal(meta); mErr == nil {
			req.Header.Set("X-Axion-Metadata", string(encoded))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetworkUnreachable, "remote vault request failed", err)
	}
	return resp, nil
}

type manifestEnvelope struct {
	EncryptedData  []byte    `json:"encryptedData"`
	Version        int64     `json:"version"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UpdatedBy      string    `json:"updatedBy"`
	KeyFingerprint string    `json:"keyFingerprint,omitempty"`
}

type fetchManifestResponse struct {
	Manifest *manifestEnvelope `json:"manifest"`
}

// FetchManifest implements RemoteVault.
func (c *HTTPClient) FetchManifest(ctx context.Context, projectID string) (FetchResult, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%s/manifest", projectID), nil)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return FetchResult{Found: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, errs.New(errs.KindNetworkUnreachable, fmt.Sprintf("fetch manifest: unexpected status %d", resp.StatusCode))
	}

	var body fetchManifestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return FetchResult{}, errs.Wrap(errs.KindNetworkUnreachable, "fetch manifest: malformed response", err)
	}
	if body.Manifest == nil {
		return FetchResult{Found: false}, nil
	}
	return FetchResult{
		Found: true,
		Record: &store.CloudManifestRecord{
			EncryptedData:  body.Manifest.EncryptedData,
			Version:        body.Manifest.Version,
			UpdatedAt:      body.Manifest.UpdatedAt,
			UpdatedBy:      body.Manifest.UpdatedBy,
			KeyFingerprint: body.Manifest.KeyFingerprint,
		},
	}, nil
}

type uploadManifestRequest struct {
	ProjectID      string `json:"projectId"`
	EncryptedData  []byte `json:"encryptedData"`
	KeyFingerprint string `json:"keyFingerprint"`
}

// UploadManifest implements RemoteVault.
func (c *HTTPClient) UploadManifest(ctx context.Context, projectID string, encryptedData []byte, keyFingerprint string) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%s/manifest", projectID), uploadManifestRequest{
		ProjectID:      projectID,
		EncryptedData:  encryptedData,
		KeyFingerprint: keyFingerprint,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindNetworkUnreachable, fmt.Sprintf("upload manifest: unexpected status %d", resp.StatusCode))
	}
	return nil
}

// Pulse implements RemoteVault, the best-effort heartbeat the arbiter calls
// before a remote fetch.
func (c *HTTPClient) Pulse(ctx context.Context, projectID string) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%s/pulse", projectID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindNetworkUnreachable, fmt.Sprintf("pulse: unexpected status %d", resp.StatusCode))
	}
	return nil
}

// FetchHistory implements RemoteVault, returning one row per recorded
// version.
func (c *HTTPClient) FetchHistory(ctx context.Context, projectID string) ([]HistoryEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%s/history", projectID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.KindNetworkUnreachable, fmt.Sprintf("fetch history: unexpected status %d", resp.StatusCode))
	}
	var entries []HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errs.Wrap(errs.KindNetworkUnreachable, "fetch history: malformed response", err)
	}
	return entries, nil
}

type rollbackRequest struct {
	Version int64 `json:"version"`
}

// Rollback implements RemoteVault.
func (c *HTTPClient) Rollback(ctx context.Context, projectID string, version int64) error {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%s/rollback", projectID), rollbackRequest{Version: version})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindNetworkUnreachable, fmt.Sprintf("rollback: unexpected status %d", resp.StatusCode))
	}
	return nil
}
