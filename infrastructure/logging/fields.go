package logging

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// ToolName adds a tool name field.
func ToolName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// Category adds a tool category field.
func Category(category string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("category", category)
	}
}

// FieldKind adds the kind of a corrected parameter.
func FieldKind(kind string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("kind", kind)
	}
}

// Original adds the caller-supplied value of a corrected parameter.
func Original(value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("original", value)
	}
}

// Canonical adds the corrected value of a parameter.
func Canonical(value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("canonical", value)
	}
}

// Outcome adds a correction outcome field.
func Outcome(outcome string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("outcome", outcome)
	}
}

// Confidence adds a similarity score with three decimals.
func Confidence(score float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("confidence", strconv.FormatFloat(score, 'f', 3, 64))
	}
}

// Endpoint adds an upstream API path.
func Endpoint(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("endpoint", path)
	}
}

// StatusCode adds an HTTP status code.
func StatusCode(code int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("status", code)
	}
}

// RequestID adds a request correlation ID.
func RequestID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("request_id", id)
	}
}

// Source adds a vocabulary source name.
func Source(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("source", name)
	}
}

// Count adds a count field with a custom key.
func Count(key string, n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, n)
	}
}

// State adds a registration state field.
func State(state string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", state)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Cached adds a cached field.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
