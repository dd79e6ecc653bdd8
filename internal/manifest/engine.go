package manifest

import (
	"regexp"

	"github.com/axion-sh/axion/internal/errs"
)

// Engine wraps a Manifest with the mutation and resolution operations the
// rest of the core drives it through. It is not safe for concurrent use by
// multiple goroutines without external serialisation.
type Engine struct {
	m         *Manifest
	policy    Policy
	overrides VarMap
}

// NewEngine wraps m. A nil policy falls back to one with no validation
// bounds and nothing protected.
func NewEngine(m *Manifest, policy Policy) *Engine {
	if policy == nil {
		policy = noPolicy{}
	}
	return &Engine{m: m, policy: policy}
}

// Manifest returns the underlying tree. Callers that need a snapshot
// unaffected by later mutation should call Clone on it.
func (e *Engine) Manifest() *Manifest {
	return e.m
}

// SetOverrides installs the process-local override overlay (step 5 of
// resolution). Overrides are never part of the manifest and are never
// persisted or uploaded.
func (e *Engine) SetOverrides(overrides VarMap) {
	e.overrides = overrides
}

// GetVariables returns a fresh map for (service, scope) built by overlaying,
// in order, _global defaults, scoped _global, the service's own variables,
// the service's scoped variables, local overrides, then resolving templates
// against the flattened result. The order is fixed.
func (e *Engine) GetVariables(service, scope string) (VarMap, error) {
	overlay := VarMap{}

	merge := func(src VarMap) {
		for k, v := range src {
			overlay[k] = v
		}
	}

	merge(e.m.Services[GlobalService])
	if scope != "" {
		if sm, ok := e.m.Scopes[scope]; ok {
			merge(sm[GlobalService])
		}
	}
	if service != GlobalService {
		merge(e.m.Services[service])
	}
	if scope != "" {
		if sm, ok := e.m.Scopes[scope]; ok {
			merge(sm[service])
		}
	}
	merge(e.overrides)

	return resolveAll(overlay)
}

// SetVariable validates name and value against policy, then writes value
// into services[service][name] (scope == "") or scopes[scope][service][name].
func (e *Engine) SetVariable(name, value, service, scope string) error {
	if service == "" {
		service = GlobalService
	}
	if err := ValidateVariableName(name); err != nil {
		return err
	}
	if err := ValidateServiceName(service); err != nil {
		return err
	}
	if scope != "" && !IsValidScope(scope) {
		return errs.New(errs.KindValidationFailed, "scope \""+scope+"\" is not a recognised scope")
	}
	if pattern, ok := e.policy.ValidationPattern(name); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return errs.Wrap(errs.KindValidationFailed, "bound pattern for \""+name+"\" does not compile", err)
		}
		if !re.MatchString(value) {
			return errs.New(errs.KindValidationFailed, "value for \""+name+"\" does not match its bound pattern")
		}
	}

	var target VarMap
	if scope == "" {
		target = e.m.ensureService(service)
	} else {
		target = e.m.ensureScopedService(scope, service)
	}
	target[name] = value
	return nil
}

// RemoveVariable deletes name from the targeted tree, returning whether
// anything changed.
func (e *Engine) RemoveVariable(name, service, scope string) bool {
	if service == "" {
		service = GlobalService
	}
	var target VarMap
	if scope == "" {
		sm, ok := e.m.Services[service]
		if !ok {
			return false
		}
		target = sm
	} else {
		sm, ok := e.m.Scopes[scope]
		if !ok {
			return false
		}
		vm, ok := sm[service]
		if !ok {
			return false
		}
		target = vm
	}
	if _, ok := target[name]; !ok {
		return false
	}
	delete(target, name)
	return true
}
