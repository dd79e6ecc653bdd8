package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// CloudManifestRecord is the remote replica of the manifest: the envelope
// bytes plus the metadata the server tracks around it. Version is a
// monotonic per-project counter, distinct from the in-envelope format
// version.
type CloudManifestRecord struct {
	EncryptedData  []byte
	Version        int64
	UpdatedAt      time.Time
	UpdatedBy      string
	KeyFingerprint string
}

// CloudLink is the project's persisted linkage to a remote project, stored
// at cloud.json.
type CloudLink struct {
	ProjectID string    `json:"projectId"`
	APIURL    string    `json:"apiUrl"`
	LinkedAt  time.Time `json:"linkedAt"`
}

const cloudLinkFileName = "cloud.json"
const cloudLinkMode = 0600

// LoadCloudLink reads cloud.json from dir. A missing file means the project
// is not cloud-linked and is not an error.
func LoadCloudLink(dir string) (*CloudLink, error) {
	raw, err := os.ReadFile(filepath.Join(dir, cloudLinkFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var link CloudLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// SaveCloudLink persists the project's linkage to cloud.json.
func SaveCloudLink(dir string, link *CloudLink) error {
	raw, err := json.MarshalIndent(link, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cloudLinkFileName), raw, cloudLinkMode)
}
