package logging

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema returns the JSON Schema for the 'logging' section of
// extender.yml. Every field is optional.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "Extender Logging Configuration"
	schema.Description = "Schema for the 'logging' section in extender.yml."
	schema.Required = nil

	return json.MarshalIndent(schema, "", "  ")
}
