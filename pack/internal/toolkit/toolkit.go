// Package toolkit holds the plumbing shared by the Aiera tool packs:
// argument decoding, parameter correction and request forwarding.
package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
)

// Pagination defaults and bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Deps are the collaborators every tool handler needs.
type Deps struct {
	// Client performs upstream requests.
	Client aiera.Fetcher

	// Corrector normalizes caller-supplied values.
	Corrector *correction.Engine

	// Metrics records correction outcomes.
	Metrics telemetry.Metrics

	// PageSize is the page size used when the caller omits one.
	PageSize int
}

// withDefaults fills unset collaborators.
func (d Deps) withDefaults() Deps {
	if d.Corrector == nil {
		d.Corrector = correction.NewEngine(nil)
	}
	if d.Metrics == nil {
		d.Metrics = telemetry.NoopMetricsProvider{}
	}
	if d.PageSize <= 0 || d.PageSize > MaxPageSize {
		d.PageSize = DefaultPageSize
	}
	return d
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode unmarshals input into args and checks its validate tags. Fields
// already set on args act as defaults for keys the caller omits.
func Decode(input json.RawMessage, args any) error {
	if len(input) > 0 && string(input) != "null" {
		if err := json.Unmarshal(input, args); err != nil {
			return fmt.Errorf("%w: %v", tool.ErrInvalidInput, err)
		}
	}
	if err := validate.Struct(args); err != nil {
		return fmt.Errorf("%w: %s", tool.ErrInvalidInput, describe(err))
	}
	return nil
}

// describe turns validator errors into a message that names the JSON field.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func init() {
	validate.RegisterTagNameFunc(jsonName)
}

// Handler builds a tool handler from a per-call function.
func Handler(deps Deps, name string, fn func(ctx context.Context, call *Call, input json.RawMessage) (tool.Result, error)) tool.Handler {
	deps = deps.withDefaults()
	return func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
		call := &Call{deps: deps, tool: name, ctx: ctx}
		return fn(ctx, call, input)
	}
}

// Call tracks the corrections applied while preparing one request.
type Call struct {
	deps    Deps
	tool    string
	ctx     context.Context
	notices []string
}

// PageSize returns the configured default page size.
func (c *Call) PageSize() int {
	return c.deps.PageSize
}

// Correct normalizes *value in place. An empty value is left alone. The
// returned error names the field and wraps tool.ErrInvalidInput.
func (c *Call) Correct(kind correction.Kind, field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	res, err := c.deps.Corrector.Correct(kind, *value)
	c.record(kind, field, res)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", tool.ErrInvalidInput, field, err)
	}
	*value = res.Canonical
	return nil
}

// CorrectOptional is Correct for optional pointer fields.
func (c *Call) CorrectOptional(kind correction.Kind, field string, value **string) error {
	if value == nil || *value == nil {
		return nil
	}
	return c.Correct(kind, field, *value)
}

// CorrectIDs parses a comma-separated id list. An empty value yields nil.
func (c *Call) CorrectIDs(field, raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	res, err := c.deps.Corrector.Correct(correction.KindProvidedIDs, raw)
	c.record(correction.KindProvidedIDs, field, res)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tool.ErrInvalidInput, field, err)
	}
	return res.IDs, nil
}

func (c *Call) record(kind correction.Kind, field string, res correction.Result) {
	c.deps.Metrics.RecordCorrection(c.ctx, string(kind), res.Outcome.String())

	if res.Corrected() {
		logging.Info().
			Add(logging.ToolName(c.tool)).
			Add(logging.FieldKind(string(kind))).
			Add(logging.Original(res.Original)).
			Add(logging.Canonical(res.Canonical)).
			Add(logging.Confidence(res.Confidence)).
			Msg("parameter auto-corrected")
		c.notices = append(c.notices, fmt.Sprintf("%s %q was interpreted as %q.", field, res.Original, res.Canonical))
	}

	for _, item := range unverifiedItems(res) {
		logging.Debug().
			Add(logging.ToolName(c.tool)).
			Add(logging.FieldKind(string(kind))).
			Add(logging.Original(item.Original)).
			Msg("parameter passed through unverified")
		if item.Warning == "" {
			continue
		}
		note := fmt.Sprintf("%s: %s", field, item.Warning)
		if len(item.Suggestions) > 0 {
			note = fmt.Sprintf("%s: %s (did you mean %s?)", field, item.Warning, quoteJoin(item.Suggestions))
		}
		c.notices = append(c.notices, note)
	}

	// Partially resolved lists drop their unknown elements.
	for _, item := range res.Unresolved() {
		note := fmt.Sprintf("%s %q was not recognized and was ignored.", field, item.Original)
		if len(item.Suggestions) > 0 {
			note = fmt.Sprintf("%s %q was not recognized and was ignored (did you mean %s?).", field, item.Original, quoteJoin(item.Suggestions))
		}
		c.notices = append(c.notices, note)
	}
}

// unverifiedItems returns the passed-through elements of res, or res itself
// for a single value.
func unverifiedItems(res correction.Result) []correction.Result {
	if len(res.Items) == 0 {
		if res.Outcome == correction.Unverified {
			return []correction.Result{res}
		}
		return nil
	}
	var out []correction.Result
	for _, item := range res.Items {
		if item.Outcome == correction.Unverified {
			out = append(out, item)
		}
	}
	return out
}

// Notices returns the corrections and warnings raised so far.
func (c *Call) Notices() []string {
	return append([]string(nil), c.notices...)
}

// Forward sends req through the client, attaching the call's notices to the
// instructions envelope and the result.
func (c *Call) Forward(ctx context.Context, req aiera.Request) (tool.Result, error) {
	req.AdditionalInstructions = append(req.AdditionalInstructions, c.notices...)
	body, err := c.deps.Client.Do(ctx, req)
	if err != nil {
		return tool.Result{}, err
	}
	return tool.NewResult(body).WithNotices(c.notices...), nil
}

// Transform fetches the raw body, applies fn, then wraps it like Forward.
func (c *Call) Transform(ctx context.Context, req aiera.Request, fn func(json.RawMessage) json.RawMessage) (tool.Result, error) {
	body, err := c.deps.Client.Fetch(ctx, req)
	if err != nil {
		return tool.Result{}, err
	}
	body = fn(body)
	if !req.SkipInstructions {
		additional := append(append([]string(nil), req.AdditionalInstructions...), c.notices...)
		if body, err = c.deps.Client.Wrap(body, additional...); err != nil {
			return tool.Result{}, err
		}
	}
	return tool.NewResult(body).WithNotices(c.notices...), nil
}

func quoteJoin(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += strconv.Quote(v)
	}
	return out
}
