package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCredentialsMissingFileReturnsEmpty(t *testing.T) {
	creds, err := LoadCredentials(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessToken() != "" {
		t.Fatalf("expected empty access token, got %q", creds.AccessToken())
	}
}

func TestLoadCredentialsParsesAccessToken(t *testing.T) {
	dir := t.TempDir()
	raw := `{"user":"alice","tokens":{"access":"tok-123"},"apiUrl":"https://vault.example.com"}`
	if err := os.WriteFile(filepath.Join(dir, credentialsFileName), []byte(raw), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	creds, err := LoadCredentials(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if creds.AccessToken() != "tok-123" {
		t.Fatalf("expected access token tok-123, got %q", creds.AccessToken())
	}
	if creds.User != "alice" {
		t.Fatalf("expected user alice, got %q", creds.User)
	}
}

func TestNilCredentialsAccessTokenIsEmpty(t *testing.T) {
	var creds *Credentials
	if creds.AccessToken() != "" {
		t.Fatal("expected empty access token for nil credentials")
	}
}
