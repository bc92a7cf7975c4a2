package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	jsonschemav6 "github.com/santhosh-tekuri/jsonschema/v6"
)

// configSchema is the structural contract every declared-state document must
// satisfy, regardless of its serialization format. Documents are normalized
// to JSON values before validation so one schema covers all codecs.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["trees"],
  "additionalProperties": false,
  "properties": {
    "trees": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["root"],
        "additionalProperties": false,
        "properties": {
          "root": {"type": "string", "minLength": 1},
          "repos": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "additionalProperties": false,
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "worktree_setup": {"type": "boolean"},
                "remotes": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["name", "url"],
                    "additionalProperties": false,
                    "properties": {
                      "name": {"type": "string", "minLength": 1},
                      "url": {"type": "string", "minLength": 1},
                      "type": {"enum": ["https", "ssh"]}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", strings.NewReader(configSchema)); err != nil {
		panic(fmt.Sprintf("load config schema: %v", err))
	}
	schema, err := compiler.Compile("config.json")
	if err != nil {
		panic(fmt.Sprintf("compile config schema: %v", err))
	}
	return schema
}

// validateDocument checks the raw document against the config schema before
// it is decoded into Config. The document is first decoded with its own
// codec, then re-encoded as JSON, so the schema validator always sees
// JSON-shaped values.
func validateDocument(data []byte, codec Codec) error {
	var raw any
	if err := codec.Decode(data, &raw); err != nil {
		return fmt.Errorf("parse %s config: %w", codec.Name(), err)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalize config: %w", err)
	}

	value, err := jsonschemav6.UnmarshalJSON(bytes.NewReader(normalized))
	if err != nil {
		return fmt.Errorf("normalize config: %w", err)
	}

	if err := compiledSchema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
