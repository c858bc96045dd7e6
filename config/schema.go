package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for extender.yml from the Config
// types. Unknown top-level keys stay allowed so extensions can add sections.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "Extender Configuration"
	schema.Description = "Profiles and explorer view settings for extender.yml."

	return json.MarshalIndent(schema, "", "  ")
}
