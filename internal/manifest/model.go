// Package manifest implements the scoped-and-serviced secret tree: its data
// model, resolution order, template interpolation, mutation API, drift
// comparison against a remote copy, and crash-safe key rotation.
package manifest

import (
	"regexp"
	"strconv"

	"github.com/axion-sh/axion/internal/errs"
)

// GlobalService is the reserved service name whose variables apply across
// every other service.
const GlobalService = "_global"

// The manifest's version field is stored as a string but ordered
// numerically by the sync arbiter (higher wins on reconciliation). It is
// represented internally as a decimal-encoded uint64; a value that fails to
// parse as a non-negative base-10 integer is treated as version 0 so a
// foreign or pre-migration manifest never wins a reconciliation by
// accident.

// ParseVersion decodes a manifest's version string into its numeric order.
// A malformed value decodes to 0 rather than erroring, matching the
// arbiter's fail-safe posture.
func ParseVersion(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatVersionNumber encodes n back into the manifest's string field.
func FormatVersionNumber(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// Valid scope names.
const (
	ScopeDevelopment = "development"
	ScopeStaging     = "staging"
	ScopeProduction  = "production"
)

var validScopes = map[string]bool{
	ScopeDevelopment: true,
	ScopeStaging:     true,
	ScopeProduction:  true,
}

// IsValidScope reports whether scope is one of the three recognised scope
// names.
func IsValidScope(scope string) bool {
	return validScopes[scope]
}

var (
	variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	serviceNamePattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// ValidateVariableName reports whether name matches the variable-name
// grammar: a leading letter or underscore followed by letters, digits, or
// underscores.
func ValidateVariableName(name string) error {
	if !variableNamePattern.MatchString(name) {
		return errs.New(errs.KindValidationFailed, "variable name \""+name+"\" does not match the required pattern")
	}
	return nil
}

// ValidateServiceName reports whether name matches the service-name
// grammar, or is the reserved _global service.
func ValidateServiceName(name string) error {
	if name == GlobalService {
		return nil
	}
	if !serviceNamePattern.MatchString(name) {
		return errs.New(errs.KindValidationFailed, "service name \""+name+"\" does not match the required pattern")
	}
	return nil
}

// VarMap is a flat variable-name to value map.
type VarMap map[string]string

// ServiceMap keys variables by service name.
type ServiceMap map[string]VarMap

// ScopeMap keys a ServiceMap by scope name.
type ScopeMap map[string]ServiceMap

// Manifest is the plaintext tree sealed inside the envelope.
type Manifest struct {
	Version  string   `json:"version"`
	Services ServiceMap `json:"services"`
	Scopes   ScopeMap `json:"scopes"`
}

// New returns an empty manifest with the reserved _global service present,
// matching the post-init invariant.
func New() *Manifest {
	return &Manifest{
		Version: FormatVersionNumber(0),
		Services: ServiceMap{
			GlobalService: VarMap{},
		},
		Scopes: ScopeMap{},
	}
}

// BumpVersion advances the manifest's version counter by one, called before
// each local save so the arbiter can order it against the remote copy.
func (m *Manifest) BumpVersion() {
	m.Version = FormatVersionNumber(ParseVersion(m.Version) + 1)
}

func (m *Manifest) ensureService(service string) VarMap {
	if m.Services == nil {
		m.Services = ServiceMap{}
	}
	vm, ok := m.Services[service]
	if !ok {
		vm = VarMap{}
		m.Services[service] = vm
	}
	return vm
}

func (m *Manifest) ensureScopedService(scope, service string) VarMap {
	if m.Scopes == nil {
		m.Scopes = ScopeMap{}
	}
	sm, ok := m.Scopes[scope]
	if !ok {
		sm = ServiceMap{}
		m.Scopes[scope] = sm
	}
	vm, ok := sm[service]
	if !ok {
		vm = VarMap{}
		sm[service] = vm
	}
	return vm
}

// Clone returns a deep copy, used whenever a caller must not observe later
// in-place mutation (drift comparison, rotation round-trip verification).
func (m *Manifest) Clone() *Manifest {
	out := &Manifest{Version: m.Version, Services: ServiceMap{}, Scopes: ScopeMap{}}
	for svc, vars := range m.Services {
		out.Services[svc] = cloneVarMap(vars)
	}
	for scope, svcs := range m.Scopes {
		sm := ServiceMap{}
		for svc, vars := range svcs {
			sm[svc] = cloneVarMap(vars)
		}
		out.Scopes[scope] = sm
	}
	return out
}

func cloneVarMap(in VarMap) VarMap {
	out := make(VarMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
