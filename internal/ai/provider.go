// Package ai defines the text-generation capability consumed by the
// provider-backed matcher and the failure modes it may report.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnavailable is returned when the provider cannot be reached or refuses the request.
	ErrUnavailable = errors.New("ai provider unavailable")
	// ErrTimeout is returned when the provider does not answer in time.
	ErrTimeout = errors.New("ai provider timeout")
	// ErrMalformedOutput is returned when the answer does not match the requested schema.
	ErrMalformedOutput = errors.New("malformed ai provider output")
)

// Schema is a JSON schema document describing a structured answer.
type Schema map[string]any

// Provider generates structured output for a prompt.
type Provider interface {
	GenerateStructured(ctx context.Context, prompt string, schema Schema, systemPrompt string) (map[string]any, error)
}

// String renders the schema as indented JSON for inclusion in prompts.
func (s Schema) String() string {
	raw, err := json.MarshalIndent(map[string]any(s), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ParseStructured extracts a JSON object from raw model output and validates
// it against schema.
func ParseStructured(raw string, schema Schema) (map[string]any, error) {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if err := Validate(schema, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Validate checks data against schema. A nil schema accepts anything.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(map[string]any(schema)),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: schema validation: %v", ErrMalformedOutput, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedOutput, strings.Join(problems, "; "))
	}
	return nil
}

// ExtractJSON strips markdown code fences and any prose around the outermost
// JSON object.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}
