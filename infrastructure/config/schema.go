package config

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	domainconfig "github.com/aiera-inc/aiera-mcp/domain/config"
)

// SchemaID identifies the generated configuration schema.
const SchemaID = "https://github.com/aiera-inc/aiera-mcp/config.schema.json"

// GenerateSchema reflects a JSON Schema for the configuration file.
func GenerateSchema() (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(domainconfig.Duration(0)) {
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration (e.g. 30s) or seconds",
				}
			}
			return nil
		},
	}
	schema := r.Reflect(&domainconfig.Config{})
	if schema == nil {
		return nil, domainconfig.ErrSchemaGenerationFailed
	}
	schema.ID = SchemaID
	schema.Title = "aiera-mcp configuration"
	return schema, nil
}

// SchemaJSON returns the configuration schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	schema, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainconfig.ErrSchemaGenerationFailed, err)
	}
	return data, nil
}
