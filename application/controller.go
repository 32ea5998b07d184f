// Package application coordinates tool selection and the services that
// expose the selected tools.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/statekit"

	"github.com/aiera-inc/aiera-mcp/domain/fuzzy"
	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
	"github.com/aiera-inc/aiera-mcp/infrastructure/statemachine"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
)

// DefaultMaxNameSuggestions bounds the suggestions for an unknown tool name.
const DefaultMaxNameSuggestions = 3

// SelectionRequest names the tools a host wants exposed. Include and Exclude
// are mutually exclusive; entries may be tool or group names.
type SelectionRequest struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// ResolvedSet is the ordered outcome of a successful selection.
type ResolvedSet struct {
	tools []tool.Tool
}

// Tools returns the selected tools in registry order.
func (s *ResolvedSet) Tools() []tool.Tool {
	out := make([]tool.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Names returns the selected tool names in registry order.
func (s *ResolvedSet) Names() []string {
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name()
	}
	return names
}

// Len returns the number of selected tools.
func (s *ResolvedSet) Len() int {
	return len(s.tools)
}

// Contains returns true if the named tool was selected.
func (s *ResolvedSet) Contains(name string) bool {
	for _, t := range s.tools {
		if t.Name() == name {
			return true
		}
	}
	return false
}

// ControllerConfig contains configuration for the controller.
type ControllerConfig struct {
	Registry tool.Registry
	Groups   []pack.Group
	Metrics  telemetry.Metrics

	// MaxSuggestions bounds suggestions per unknown name (default 3).
	MaxSuggestions int
}

// Controller validates selection requests against the registry and
// resolves them to an ordered tool set. It holds only immutable data and
// is safe for concurrent use.
type Controller struct {
	registry       tool.Registry
	groups         map[string][]string
	machine        *statekit.MachineConfig[*statemachine.Context]
	matcher        *fuzzy.Matcher
	metrics        telemetry.Metrics
	maxSuggestions int
}

// NewController creates a controller. Every group member must name a
// registry tool and no group may share a name with a tool.
func NewController(config ControllerConfig) (*Controller, error) {
	if config.Registry == nil {
		return nil, errors.New("registry is required")
	}

	groups := make(map[string][]string, len(config.Groups))
	for _, g := range config.Groups {
		if g.Name == "" {
			return nil, &ConfigurationError{Reason: "group with empty name"}
		}
		if _, ok := config.Registry.Describe(g.Name); ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("group %q shadows a tool name", g.Name)}
		}
		if _, dup := groups[g.Name]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate group %q", g.Name)}
		}
		for _, member := range g.Members {
			if _, ok := config.Registry.Describe(member); !ok {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("group %q names unknown tool %q", g.Name, member)}
			}
		}
		groups[g.Name] = append([]string(nil), g.Members...)
	}

	machine, err := statemachine.NewRegistrationMachine()
	if err != nil {
		return nil, fmt.Errorf("build registration machine: %w", err)
	}

	c := &Controller{
		registry:       config.Registry,
		groups:         groups,
		machine:        machine,
		matcher:        fuzzy.NewMatcher(),
		metrics:        config.Metrics,
		maxSuggestions: config.MaxSuggestions,
	}
	if c.metrics == nil {
		c.metrics = telemetry.NoopMetricsProvider{}
	}
	if c.maxSuggestions <= 0 {
		c.maxSuggestions = DefaultMaxNameSuggestions
	}
	return c, nil
}

// Register validates a selection request and resolves it to a tool set.
//
// Both lists non-empty fails with a *ConfigurationError before any name is
// checked. Unknown names fail with an *UnknownToolError carrying
// suggestions. An empty request selects every tool.
func (c *Controller) Register(req SelectionRequest) (*ResolvedSet, error) {
	interp := statemachine.NewInterpreter(c.machine)
	defer interp.Stop()

	set, err := c.register(interp, req)

	state := interp.State()
	c.metrics.RecordRegistration(context.Background(), state.String(), set.Len())
	if err != nil {
		logging.Warn().
			Add(logging.Component("registry")).
			Add(logging.State(state.String())).
			Add(logging.ErrorField(err)).
			Msg("tool selection rejected")
		return nil, err
	}

	logging.Info().
		Add(logging.Component("registry")).
		Add(logging.State(state.String())).
		Add(logging.Count("tools", set.Len())).
		Msg("tool selection resolved")
	return set, nil
}

func (c *Controller) register(interp *statemachine.Interpreter, req SelectionRequest) (*ResolvedSet, error) {
	include := clean(req.Include)
	exclude := clean(req.Exclude)

	if len(include) > 0 && len(exclude) > 0 {
		err := &ConfigurationError{Reason: "include and exclude are mutually exclusive"}
		return &ResolvedSet{}, c.reject(interp, err)
	}

	includeSet, unknownInc := c.expand(include)
	excludeSet, unknownExc := c.expand(exclude)
	if unknown := append(unknownInc, unknownExc...); len(unknown) > 0 {
		err := &UnknownToolError{
			Names:       unknown,
			Suggestions: make(map[string][]string, len(unknown)),
		}
		names := c.registry.Names()
		for _, name := range unknown {
			err.Suggestions[name] = fuzzy.Candidates(c.matcher.Suggest(name, names, c.maxSuggestions))
		}
		return &ResolvedSet{}, c.reject(interp, err)
	}

	if err := interp.Validate(); err != nil {
		return &ResolvedSet{}, err
	}

	set := &ResolvedSet{}
	for _, t := range c.registry.List() {
		switch {
		case len(include) > 0:
			if includeSet[t.Name()] {
				set.tools = append(set.tools, t)
			}
		case len(exclude) > 0:
			if !excludeSet[t.Name()] {
				set.tools = append(set.tools, t)
			}
		default:
			set.tools = append(set.tools, t)
		}
	}

	if err := interp.Resolve(); err != nil {
		return &ResolvedSet{}, err
	}
	return set, nil
}

func (c *Controller) reject(interp *statemachine.Interpreter, cause error) error {
	if err := interp.Reject(cause); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// expand resolves tool and group names to a set of tool names and returns
// the entries that are neither.
func (c *Controller) expand(entries []string) (map[string]bool, []string) {
	set := make(map[string]bool, len(entries))
	var unknown []string
	for _, entry := range entries {
		if _, ok := c.registry.Describe(entry); ok {
			set[entry] = true
			continue
		}
		if members, ok := c.groups[entry]; ok {
			for _, m := range members {
				set[m] = true
			}
			continue
		}
		unknown = append(unknown, entry)
	}
	return set, unknown
}

// Groups returns the group names the controller accepts.
func (c *Controller) Groups() map[string][]string {
	out := make(map[string][]string, len(c.groups))
	for name, members := range c.groups {
		out[name] = append([]string(nil), members...)
	}
	return out
}

// clean trims entries, drops blanks and duplicates, keeping first-seen order.
func clean(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// ParseNameList splits a comma-separated tool list as read from flags or
// the environment.
func ParseNameList(s string) []string {
	return clean(strings.Split(s, ","))
}
