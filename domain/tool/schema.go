package tool

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Schema wraps a JSON Schema document for tool input.
type Schema struct {
	raw json.RawMessage
}

// NewSchema creates a schema from raw JSON.
func NewSchema(raw json.RawMessage) Schema {
	return Schema{raw: raw}
}

// EmptySchema returns a schema that accepts any object.
func EmptySchema() Schema {
	return Schema{raw: json.RawMessage(`{"type":"object"}`)}
}

// SchemaFor reflects the input schema of an args struct. Properties come from
// json tags; descriptions, enums and required markers from jsonschema tags.
func SchemaFor[T any]() Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.ReflectFromType(reflect.TypeOf((*T)(nil)).Elem())
	s.Version = ""
	raw, err := json.Marshal(s)
	if err != nil {
		return EmptySchema()
	}
	return Schema{raw: raw}
}

// Raw returns the underlying JSON schema.
func (s Schema) Raw() json.RawMessage {
	return s.raw
}

// IsEmpty returns true if the schema is empty or nil.
func (s Schema) IsEmpty() bool {
	return len(s.raw) == 0 || string(s.raw) == "{}" || string(s.raw) == "null"
}

// Properties returns the top-level property names in schema order.
func (s Schema) Properties() []string {
	var doc struct {
		Properties *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
	}
	if err := json.Unmarshal(s.raw, &doc); err != nil || doc.Properties == nil {
		return nil
	}
	names := make([]string, 0, doc.Properties.Len())
	for pair := doc.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Validate checks that data is a JSON object. Field-level checks happen
// when the handler decodes its args struct.
func (s Schema) Validate(data json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: arguments must be a JSON object", ErrInvalidInput)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s.raw == nil {
		return []byte("{}"), nil
	}
	return s.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schema) UnmarshalJSON(data []byte) error {
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}
