package correction

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for parameter correction.
var (
	// ErrInvalidInput indicates a syntactically malformed parameter value.
	ErrInvalidInput = errors.New("invalid parameter value")

	// ErrRejected indicates a value that no vocabulary entry matches.
	ErrRejected = errors.New("unrecognized parameter value")

	// ErrUnknownKind indicates a kind outside the correctable set.
	ErrUnknownKind = errors.New("unknown parameter kind")
)

// ValidationError reports malformed input for one field.
type ValidationError struct {
	Kind   Kind
	Token  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Token, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RejectedError reports values that could not be resolved, with ranked
// suggestions for the caller to show.
type RejectedError struct {
	Kind        Kind
	Values      []string
	Suggestions []string
}

func (e *RejectedError) Error() string {
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	msg := fmt.Sprintf("unrecognized %s %s", e.Kind, strings.Join(quoted, ", "))
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}
