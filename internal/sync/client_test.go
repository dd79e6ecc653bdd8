package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axion-sh/axion/internal/errs"
)

func TestHTTPClientFetchManifestFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/proj-1/manifest", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"manifest": map[string]interface{}{
				"encryptedData": []byte("ciphertext"),
				"version":       3,
				"updatedBy":     "alice",
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-token", "test-cli")
	result, err := c.FetchManifest(context.Background(), "proj-1")
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, int64(3), result.Record.Version)
	require.Equal(t, "alice", result.Record.UpdatedBy)
}

func TestHTTPClientFetchManifestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-token", "test-cli")
	result, err := c.FetchManifest(context.Background(), "proj-1")
	require.NoError(t, err)
	require.False(t, result.Found)
}

func TestHTTPClientUploadManifest(t *testing.T) {
	var received uploadManifestRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-token", "test-cli")
	err := c.UploadManifest(context.Background(), "proj-1", []byte("ciphertext"), "fp-123")
	require.NoError(t, err)
	require.Equal(t, "fp-123", received.KeyFingerprint)
}

func TestHTTPClientPulseUnexpectedStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-token", "test-cli")
	err := c.Pulse(context.Background(), "proj-1")
	require.Error(t, err)
}

func TestHTTPClientUnreachableServerIsNetworkError(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", "test-token", "test-cli")
	_, err := c.FetchManifest(context.Background(), "proj-1")
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.KindNetworkUnreachable, kind)
}
