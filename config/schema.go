package config

import (
	"encoding/json"
	"sync"

	"github.com/grovetools/reqs/schema"
	"github.com/invopop/jsonschema"
)

//go:generate go run ../tools/schema-generator -o ../schema/definitions/reqs.schema.json

// GenerateSchema generates the JSON Schema for reqs.yml. Extensions are not
// part of it; they are validated by the packages that own them.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	s := r.Reflect(&Config{})
	s.Title = "reqs configuration"
	s.Description = "Schema for reqs.yml."

	return json.MarshalIndent(s, "", "  ")
}

var (
	validatorOnce sync.Once
	validator     *schema.Validator
	validatorErr  error
)

// SchemaValidator returns the compiled validator for Config values.
func SchemaValidator() (*schema.Validator, error) {
	validatorOnce.Do(func() {
		var data []byte
		data, validatorErr = GenerateSchema()
		if validatorErr != nil {
			return
		}
		validator, validatorErr = schema.NewValidator("reqs.json", data)
	})
	return validator, validatorErr
}
