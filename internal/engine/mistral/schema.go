// internal/engine/mistral/schema.go
package mistral

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "review-rating-engine/internal/common/errors"
)

// Model responses are validated against strict schemas before use: a
// missing or out-of-range field fails the whole payload rather than
// being silently defaulted.

const sentimentSchema = `{
	"type": "object",
	"required": ["sentiment", "confidence", "emotional_intensity"],
	"properties": {
		"sentiment": {"type": "string", "enum": ["positif", "negatif", "neutre"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"emotional_intensity": {"type": "number", "minimum": 0, "maximum": 1},
		"positive_indicators": {"type": "array", "items": {"type": "string"}},
		"negative_indicators": {"type": "array", "items": {"type": "string"}},
		"key_themes": {"type": "array", "items": {"type": "string"}}
	}
}`

const ratingSchema = `{
	"type": "object",
	"required": ["suggested_rating", "confidence"],
	"properties": {
		"suggested_rating": {"type": "number", "minimum": 1, "maximum": 5},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"justification": {"type": "string"}
	}
}`

const coherenceSchema = `{
	"type": "object",
	"required": ["coherent", "score"],
	"properties": {
		"coherent": {"type": "boolean"},
		"score": {"type": "number", "minimum": 0, "maximum": 1},
		"explanation": {"type": "string"}
	}
}`

var (
	sentimentSchemaLoader = gojsonschema.NewStringLoader(sentimentSchema)
	ratingSchemaLoader    = gojsonschema.NewStringLoader(ratingSchema)
	coherenceSchemaLoader = gojsonschema.NewStringLoader(coherenceSchema)
)

// validatePayload checks raw JSON against a schema, returning a typed
// payload error with every violation listed.
func validatePayload(schemaLoader gojsonschema.JSONLoader, raw string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return stderrors.NewResponsePayloadError(err.Error())
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return stderrors.NewResponsePayloadError(strings.Join(violations, "; "))
	}

	return nil
}

// stripJSONFence removes a surrounding markdown code fence from model
// output. Models regularly wrap JSON in ```json blocks despite being
// told not to.
func stripJSONFence(content string) string {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}
