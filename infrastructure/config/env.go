package config

import (
	"fmt"
	"regexp"
	"strings"

	domainconfig "github.com/aiera-inc/aiera-mcp/domain/config"
)

// envPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}`)

// envExpander expands environment variables in configuration text.
type envExpander struct {
	lookup func(string) (string, bool)
	// strict fails if a referenced variable without a default is unset.
	strict  bool
	missing []string
}

func newExpander(lookup func(string) (string, bool), strict bool) *envExpander {
	return &envExpander{lookup: lookup, strict: strict}
}

// Expand expands environment variables in the input string.
// Supported patterns:
//   - ${VAR} - expands to the value of VAR
//   - ${VAR:-default} - expands to VAR or "default" if unset or empty
//   - ${VAR:?error message} - fails if VAR is unset or empty
func (e *envExpander) Expand(input string) (string, error) {
	e.missing = nil

	result := envPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envPattern.FindStringSubmatch(match)
		name, modifier := sub[1], sub[2]
		value, exists := e.lookup(name)

		switch {
		case strings.HasPrefix(modifier, ":-"):
			if !exists || value == "" {
				return modifier[2:]
			}
		case strings.HasPrefix(modifier, ":?"):
			if !exists || value == "" {
				e.missing = append(e.missing, fmt.Sprintf("%s: %s", name, modifier[2:]))
				return match
			}
		default:
			if !exists && e.strict {
				e.missing = append(e.missing, name)
			}
		}
		return value
	})

	if len(e.missing) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVar, strings.Join(e.missing, ", "))
	}
	return result, nil
}

// ExpandEnv expands environment variables, leaving unset ones empty.
func ExpandEnv(input string, lookup func(string) (string, bool)) string {
	result, _ := newExpander(lookup, false).Expand(input)
	return result
}

// ExpandEnvStrict expands environment variables and returns an error for
// missing ones.
func ExpandEnvStrict(input string, lookup func(string) (string, bool)) (string, error) {
	return newExpander(lookup, true).Expand(input)
}
