package manifest

import "encoding/json"

// Marshal serialises m to its plaintext JSON form, the payload that gets
// sealed inside an envelope.
func Marshal(m *Manifest) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal parses plaintext JSON into a Manifest.
func Unmarshal(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m.Services == nil {
		m.Services = ServiceMap{}
	}
	if m.Scopes == nil {
		m.Scopes = ScopeMap{}
	}
	return &m, nil
}
