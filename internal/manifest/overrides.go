package manifest

import (
	"os"

	"github.com/axion-sh/axion/internal/parser"
)

// LoadOverrides reads the optional local override file at path, returning an
// empty map if it does not exist. Overrides are process-local: they are
// merged into GetVariables' overlay but never written back into the
// manifest or uploaded.
func LoadOverrides(path string) (VarMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return VarMap{}, nil
		}
		return nil, err
	}
	vars, err := parser.ParseString(string(raw))
	if err != nil {
		return nil, err
	}
	return VarMap(vars), nil
}
