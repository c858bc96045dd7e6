package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator validates raw configuration documents against the schema
// generated from the Config types.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

var (
	compiledValidator *SchemaValidator
	compileErr        error
	compileOnce       sync.Once
)

// NewSchemaValidator returns the schema validator, compiling the schema on
// first use.
func NewSchemaValidator() (*SchemaValidator, error) {
	compileOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			compileErr = fmt.Errorf("failed to generate schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extender.json", bytes.NewReader(data)); err != nil {
			compileErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("extender.json")
		if err != nil {
			compileErr = fmt.Errorf("failed to compile schema: %w", err)
			return
		}
		compiledValidator = &SchemaValidator{schema: schema}
	})
	return compiledValidator, compileErr
}

// Validate validates a decoded YAML or TOML document against the schema.
func (v *SchemaValidator) Validate(document interface{}) error {
	// Round-trip through JSON so the validator only sees plain JSON values.
	jsonData, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON for validation: %w", err)
	}

	var dataToValidate interface{}
	if err := json.Unmarshal(jsonData, &dataToValidate); err != nil {
		return fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}

	if err := v.schema.Validate(dataToValidate); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var errorMessages []string
			collectErrors(validationErr, &errorMessages)
			return fmt.Errorf("schema validation failed:\n%s", strings.Join(errorMessages, "\n"))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// collectErrors recursively collects all validation errors into a slice
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if err.InstanceLocation != "" {
		*messages = append(*messages, fmt.Sprintf("- %s: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
