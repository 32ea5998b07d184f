package tool_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aiera-inc/aiera-mcp/domain/tool"
)

type findArgs struct {
	Ticker  string `json:"bloomberg_ticker,omitempty" jsonschema:"description=Bloomberg ticker"`
	Page    int    `json:"page,omitempty" jsonschema:"minimum=1"`
	EventID int64  `json:"event_id" jsonschema:"required"`
}

func TestSchemaFor(t *testing.T) {
	t.Parallel()

	schema := tool.SchemaFor[findArgs]()
	if schema.IsEmpty() {
		t.Fatal("SchemaFor() returned empty schema")
	}

	var parsed struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(schema.Raw(), &parsed); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	if parsed.Type != "object" {
		t.Errorf("type = %q, want object", parsed.Type)
	}
	if diff := cmp.Diff([]string{"event_id"}, parsed.Required); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bloomberg_ticker", "page", "event_id"}, schema.Properties()); diff != "" {
		t.Errorf("Properties() mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_Validate(t *testing.T) {
	t.Parallel()

	schema := tool.SchemaFor[findArgs]()

	tests := []struct {
		name    string
		data    json.RawMessage
		wantErr bool
	}{
		{name: "object", data: json.RawMessage(`{"event_id":1}`)},
		{name: "empty input", data: nil},
		{name: "array", data: json.RawMessage(`[1,2]`), wantErr: true},
		{name: "malformed", data: json.RawMessage(`{`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := schema.Validate(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tool.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSchema_JSON(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"type":"object"}`)
	out, err := json.Marshal(tool.NewSchema(raw))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != string(raw) {
		t.Errorf("Marshal() = %s, want %s", out, raw)
	}

	var back tool.Schema
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if string(back.Raw()) != string(raw) {
		t.Errorf("Raw() = %s, want %s", back.Raw(), raw)
	}
	if !tool.NewSchema(nil).IsEmpty() {
		t.Error("IsEmpty() = false for nil schema")
	}
}
