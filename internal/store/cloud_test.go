package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCloudLinkMissingFileIsNotError(t *testing.T) {
	link, err := LoadCloudLink(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link != nil {
		t.Fatalf("expected nil link for unlinked project, got %+v", link)
	}
}

func TestSaveThenLoadCloudLinkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &CloudLink{
		ProjectID: "proj-1",
		APIURL:    "https://vault.example.com",
		LinkedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := SaveCloudLink(dir, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadCloudLink(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected a link, got nil")
	}
	if got.ProjectID != want.ProjectID || got.APIURL != want.APIURL {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if !got.LinkedAt.Equal(want.LinkedAt) {
		t.Fatalf("linkedAt mismatch: got %v, want %v", got.LinkedAt, want.LinkedAt)
	}
}

func TestLoadCloudLinkMalformedJSONErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cloudLinkFileName), []byte("not json"), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := LoadCloudLink(dir); err == nil {
		t.Fatal("expected error for malformed cloud.json")
	}
}
