package manifest

import (
	"strings"

	"github.com/axion-sh/axion/internal/errs"
)

const legacyRefPrefix = "@ref:"

// resolveAll interpolates every value in overlay against itself, returning a
// fresh map with all `{{NAME}}` and `@ref:NAME` references replaced by their
// resolved values. Resolution is memoised per key and detects cycles via the
// in-progress chain.
func resolveAll(overlay VarMap) (VarMap, error) {
	resolved := make(VarMap, len(overlay))
	inProgress := make(map[string]bool, len(overlay))

	var resolve func(key string, chain []string) (string, error)
	resolve = func(key string, chain []string) (string, error) {
		if v, ok := resolved[key]; ok {
			return v, nil
		}
		raw, ok := overlay[key]
		if !ok {
			return "", errs.New(errs.KindMissingReference, "reference to undefined key \""+key+"\"")
		}
		if inProgress[key] {
			return "", errs.New(errs.KindCircularReference, "circular reference: "+strings.Join(append(chain, key), " -> "))
		}
		inProgress[key] = true
		defer delete(inProgress, key)

		out, err := interpolate(raw, overlay, resolve, append(chain, key))
		if err != nil {
			return "", err
		}
		resolved[key] = out
		return out, nil
	}

	for key := range overlay {
		if _, err := resolve(key, nil); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

type resolveFn func(key string, chain []string) (string, error)

// interpolate scans raw for `{{NAME}}`, `@ref:NAME`, and `\{{` escapes,
// substituting resolved references as it goes.
func interpolate(raw string, overlay VarMap, resolve resolveFn, chain []string) (string, error) {
	if strings.HasPrefix(raw, legacyRefPrefix) && !strings.Contains(raw, "{{") {
		name := strings.TrimPrefix(raw, legacyRefPrefix)
		return resolve(name, chain)
	}

	var b strings.Builder
	i := 0
	for i < len(raw) {
		switch {
		case strings.HasPrefix(raw[i:], `\{{`):
			b.WriteString("{{")
			i += 3
		case strings.HasPrefix(raw[i:], "{{"):
			end := strings.Index(raw[i+2:], "}}")
			if end == -1 {
				b.WriteString(raw[i:])
				i = len(raw)
				continue
			}
			name := raw[i+2 : i+2+end]
			val, err := resolve(name, chain)
			if err != nil {
				return "", err
			}
			b.WriteString(val)
			i += 2 + end + 2
		default:
			b.WriteByte(raw[i])
			i++
		}
	}
	return b.String(), nil
}
