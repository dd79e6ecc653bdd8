package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Credentials is the user-global `~/.axion/credentials.json` record the
// device-code authentication flow writes; the core only ever reads the
// access token back off disk and is oblivious to how it was obtained.
type Credentials struct {
	User   string            `json:"user"`
	Tokens map[string]string `json:"tokens"`
	APIURL string            `json:"apiUrl"`
}

// AccessToken returns the bearer token the core forwards on sync calls, or
// the empty string if no credentials are on disk yet.
func (c *Credentials) AccessToken() string {
	if c == nil {
		return ""
	}
	return c.Tokens["access"]
}

const credentialsFileName = "credentials.json"

// LoadCredentials reads credentials.json from the user-global state
// directory. A missing file is not an error: the core is oblivious to
// whether the identity provider step has run yet.
func LoadCredentials(globalDir string) (*Credentials, error) {
	raw, err := os.ReadFile(filepath.Join(globalDir, credentialsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}
