package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for tool selection.
var (
	// ErrConfiguration indicates an invalid selection or group setup.
	ErrConfiguration = errors.New("invalid tool configuration")

	// ErrUnknownTool indicates a selection naming tools the registry lacks.
	ErrUnknownTool = errors.New("unknown tool")
)

// ConfigurationError reports a selection or group definition that violates
// the selection contract.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid tool configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// UnknownToolError lists every unknown name in a selection together with
// its nearest registry names.
type UnknownToolError struct {
	// Names are the unknown entries in input order.
	Names []string

	// Suggestions maps each unknown name to up to three close registry names.
	Suggestions map[string][]string
}

func (e *UnknownToolError) Error() string {
	parts := make([]string, 0, len(e.Names))
	for _, name := range e.Names {
		if s := e.Suggestions[name]; len(s) > 0 {
			parts = append(parts, fmt.Sprintf("%q (did you mean: %s?)", name, strings.Join(s, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%q", name))
		}
	}
	return "unknown tool names: " + strings.Join(parts, "; ")
}

func (e *UnknownToolError) Unwrap() error {
	return ErrUnknownTool
}

// SuggestionList returns the union of all suggestions, sorted.
func (e *UnknownToolError) SuggestionList() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range e.Suggestions {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}
