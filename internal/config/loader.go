package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads config.yaml from path, applying the documented defaults when
// the file is absent rather than treating that as an error.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	p := Default()
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	if p.Validation == nil {
		p.Validation = map[string]string{}
	}
	p.index()
	return p, nil
}
