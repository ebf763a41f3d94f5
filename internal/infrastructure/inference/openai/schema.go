package openai

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// validateFieldPayload checks that the decoded provider payload is a flat
// object whose keys are a subset of the requested field keys, with string
// values only.
func validateFieldPayload(payload any, keys []domain.Field) error {
	schema, err := compileFieldSchema(keys)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("provider payload rejected: %w", err)
	}
	return nil
}

func compileFieldSchema(keys []domain.Field) (*jsonschema.Schema, error) {
	properties := make(map[string]any, len(keys))
	for _, key := range keys {
		properties[string(key)] = map[string]any{"type": "string"}
	}
	document := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("marshal field schema: %w", err)
	}
	schema, err := jsonschema.CompileString("inline://field-extraction", string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile field schema: %w", err)
	}
	return schema, nil
}
