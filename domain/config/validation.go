package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the YAML path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Validator validates server configuration. Field rules live in the
// struct tags; rules spanning sections are checked here.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) ValidationErrors {
	var errs ValidationErrors

	if err := v.validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidationErrors{{Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Path:    fieldPath(fe.Namespace()),
				Message: describe(fe),
			})
		}
	}

	if len(cleanNames(cfg.Tools.Include)) > 0 && len(cleanNames(cfg.Tools.Exclude)) > 0 {
		errs = append(errs, ValidationError{
			Path:    "tools",
			Message: "include and exclude are mutually exclusive",
		})
	}
	if cfg.Cache.Enabled && cfg.Cache.Backend == "redis" && !cfg.Cache.Redis.Enabled() {
		errs = append(errs, ValidationError{
			Path:    "cache.redis.addr",
			Message: "required when backend is redis",
		})
	}
	if cfg.Vocabulary.Watch && cfg.Vocabulary.File == "" {
		errs = append(errs, ValidationError{
			Path:    "vocabulary.file",
			Message: "required when watch is enabled",
		})
	}

	return errs
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be host:port"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "ltefield":
		return fmt.Sprintf("must not exceed %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func cleanNames(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return out
}
