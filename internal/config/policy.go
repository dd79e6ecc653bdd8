// Package config loads the optional project-level policy: the manifest
// engine consults its validation patterns on mutation, and the SDK
// consults its protected keys on reveal.
package config

// Policy carries the two fields the core consults: a protected-key set that
// a reveal operation must never return in plaintext, and a per-key
// validation regex that setVariable enforces.
type Policy struct {
	ProtectedKeys map[string]bool   `yaml:"-"`
	Validation    map[string]string `yaml:"validation"`

	// ProtectedKeysList is the YAML-facing form; ProtectedKeys is derived
	// from it after load so lookups are O(1).
	ProtectedKeysList []string `yaml:"protected_keys"`
}

// ValidationPattern implements manifest.Policy.
func (p *Policy) ValidationPattern(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	pattern, ok := p.Validation[key]
	return pattern, ok
}

// IsProtected implements manifest.Policy.
func (p *Policy) IsProtected(key string) bool {
	if p == nil {
		return false
	}
	return p.ProtectedKeys[key]
}

func (p *Policy) index() {
	p.ProtectedKeys = make(map[string]bool, len(p.ProtectedKeysList))
	for _, k := range p.ProtectedKeysList {
		p.ProtectedKeys[k] = true
	}
}

// Default returns a Policy with no protected keys and no validation bounds,
// matching the "missing file is not an error" posture.
func Default() *Policy {
	return &Policy{
		Validation:    map[string]string{},
		ProtectedKeys: map[string]bool{},
	}
}
