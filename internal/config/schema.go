package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// settingsSchema describes the config file accepted by paramstore-keyring.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "version":     {"type": "integer", "enum": [1]},
    "backend":     {"type": "string", "enum": ["paramstore", "native"]},
    "region":      {"type": "string", "pattern": "^[a-z]{2}(-[a-z]+)+-[0-9]+$"},
    "profile":     {"type": "string", "minLength": 1},
    "key_id":      {"type": "string", "minLength": 1},
    "assume_role": {"type": "string", "pattern": "^arn:aws[a-z-]*:iam::[0-9]{12}:role/.+$"},
    "timeout":     {"type": "string", "pattern": "^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(settingsSchema)

// validateWithSchema validates a decoded config document against settingsSchema
func validateWithSchema(doc map[string]interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("schema validation failed:\n  - %s", strings.Join(errorMessages, "\n  - "))
	}

	return nil
}
