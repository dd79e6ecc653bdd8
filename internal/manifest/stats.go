package manifest

import "regexp"

// Stats is a read-only summary over a manifest, useful for a status display
// without exposing any secret values.
type Stats struct {
	ServiceCount            int
	VariableCount           int
	ScopeCount              int
	ScopedVarCount          int
	HasGlobal               bool
	UnresolvedTemplateCount int
}

var (
	templateRefPattern    = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)
	legacyRefStatsPattern = regexp.MustCompile(legacyRefPrefix + `([A-Za-z_][A-Za-z0-9_]*)`)
)

// ComputeStats summarises m's shape, plus a count of `{{NAME}}`/`@ref:NAME`
// references across every value that name a variable undefined anywhere in
// the manifest. Unlike GetVariables, this never errors on a dangling
// reference; it counts them instead.
func ComputeStats(m *Manifest) Stats {
	s := Stats{ServiceCount: len(m.Services), ScopeCount: len(m.Scopes)}
	for svc, vars := range m.Services {
		s.VariableCount += len(vars)
		if svc == GlobalService {
			s.HasGlobal = true
		}
	}
	for _, svcs := range m.Scopes {
		for _, vars := range svcs {
			s.ScopedVarCount += len(vars)
		}
	}
	s.UnresolvedTemplateCount = countUnresolvedReferences(m)
	return s
}

// countUnresolvedReferences counts template references that name a
// variable not defined in any service or scope tree. A name defined
// anywhere in the manifest is treated as resolvable, since the exact set
// visible at a given (service, scope) depends on the overlay GetVariables
// builds at resolution time.
func countUnresolvedReferences(m *Manifest) int {
	defined := map[string]bool{}
	for _, vars := range m.Services {
		for name := range vars {
			defined[name] = true
		}
	}
	for _, svcs := range m.Scopes {
		for _, vars := range svcs {
			for name := range vars {
				defined[name] = true
			}
		}
	}

	count := 0
	countIn := func(vars VarMap) {
		for _, raw := range vars {
			for _, match := range templateRefPattern.FindAllStringSubmatch(raw, -1) {
				if !defined[match[1]] {
					count++
				}
			}
			for _, match := range legacyRefStatsPattern.FindAllStringSubmatch(raw, -1) {
				if !defined[match[1]] {
					count++
				}
			}
		}
	}
	for _, vars := range m.Services {
		countIn(vars)
	}
	for _, svcs := range m.Scopes {
		for _, vars := range svcs {
			countIn(vars)
		}
	}
	return count
}
