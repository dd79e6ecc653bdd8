// Package parser converts between `.env`-style text and key/value maps.
// It is intentionally small: quoting rules cover the common single- and
// double-quoted cases and nothing more exotic.
package parser

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse reads KEY=VALUE lines from r into a map; line order is not kept, and
// a later line for the same key replaces an earlier one. Blank
// lines and lines starting with # (after leading whitespace) are skipped.
// An optional "export " prefix before the key is tolerated.
func Parse(r *bufio.Scanner) (map[string]string, error) {
	out := map[string]string{}
	lineNo := 0
	for r.Scan() {
		lineNo++
		line := strings.TrimSpace(r.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, fmt.Errorf("dotenv: line %d: missing '='", lineNo)
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			return nil, fmt.Errorf("dotenv: line %d: empty key", lineNo)
		}
		val, err := unquote(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("dotenv: line %d: %w", lineNo, err)
		}
		out[key] = val
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseString is a convenience wrapper over Parse for in-memory text.
func ParseString(text string) (map[string]string, error) {
	return Parse(bufio.NewScanner(strings.NewReader(text)))
}

func unquote(val string) (string, error) {
	if len(val) < 2 {
		return stripInlineComment(val), nil
	}
	switch val[0] {
	case '"':
		if !strings.HasSuffix(val, `"`) {
			return "", fmt.Errorf("unterminated double-quoted value")
		}
		return strconv.Unquote(val)
	case '\'':
		if !strings.HasSuffix(val, "'") || len(val) < 2 {
			return "", fmt.Errorf("unterminated single-quoted value")
		}
		return val[1 : len(val)-1], nil
	default:
		return stripInlineComment(val), nil
	}
}

// stripInlineComment drops a trailing " # comment" from an unquoted value,
// matching common .env tooling behaviour.
func stripInlineComment(val string) string {
	if idx := strings.Index(val, " #"); idx >= 0 {
		return strings.TrimSpace(val[:idx])
	}
	return val
}

// Format renders vars as sorted KEY="VALUE" lines, double-quoting every
// value so round-tripping through Parse never depends on whether a value
// happens to contain spaces or a '#'.
func Format(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, strconv.Quote(vars[k]))
	}
	return b.String()
}
