package llm

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

// SchemaFor derives the JSON schema for the output type T. The reflector's
// "$schema" and "title" fields carry no signal for the model and are
// dropped before the schema is embedded in a prompt or function definition.
func SchemaFor[T any]() (string, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	var v T
	schema := reflector.Reflect(&v)

	raw, err := json.Marshal(schema)
	if err != nil {
		return "", NewConfigurationError("failed to serialize output schema: " + err.Error())
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", NewConfigurationError("failed to normalize output schema: " + err.Error())
	}
	delete(obj, "$schema")
	delete(obj, "title")

	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", NewConfigurationError("failed to serialize output schema: " + err.Error())
	}
	return string(pretty), nil
}

// RemoveSchemaWrappers unwraps schema-shaped artifacts some deployments
// leave in model answers: single-key {"properties": {...}} objects and
// single-key {"items": [...]} fields collapse to their payloads. Invalid
// JSON passes through unchanged.
func RemoveSchemaWrappers(jsonData string) string {
	var value any
	if err := json.Unmarshal([]byte(jsonData), &value); err != nil {
		return jsonData
	}
	value = removePropertiesWrappers(value)
	value = removeItemsWrappers(value)
	out, err := json.Marshal(value)
	if err != nil {
		return jsonData
	}
	return string(out)
}

func removePropertiesWrappers(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 1 {
			if inner, ok := v["properties"].(map[string]any); ok {
				return removePropertiesWrappers(inner)
			}
		}
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = removePropertiesWrappers(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = removePropertiesWrappers(elem)
		}
		return out
	default:
		return value
	}
}

func removeItemsWrappers(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			processed := removeItemsWrappers(elem)
			if inner, ok := processed.(map[string]any); ok && len(inner) == 1 {
				if items, ok := inner["items"].([]any); ok {
					out[k] = items
					continue
				}
			}
			out[k] = processed
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = removeItemsWrappers(elem)
		}
		return out
	default:
		return value
	}
}

// dataEnvelope is the {"data": T} shape some models wrap answers in when
// they echo the schema's framing back.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// DecodeResponse decodes a model's answer into T. The sanitized text is
// tried first; when that fails the original, unsanitized text is probed
// for a {"data": T} envelope. The fallback re-parses the extracted answer
// text, not the raw provider response body. A structured extraction error
// reports the envelope failure and carries the direct-decode failure in
// its message.
//
// Both decodes reject unknown fields: without that a {"data": T} answer
// would silently decode into a zero T instead of reaching the fallback.
func DecodeResponse[T any](sanitized, original string) (*T, error) {
	var out T
	directErr := strictUnmarshal([]byte(sanitized), &out)
	if directErr == nil {
		return &out, nil
	}

	fallback := original
	if !gjson.Get(fallback, "data").Exists() {
		// The sanitized form may expose the envelope the raw text hides
		// behind fences.
		fallback = sanitized
	}
	var envelope dataEnvelope[T]
	if envErr := strictUnmarshal([]byte(fallback), &envelope); envErr != nil {
		return nil, NewStructuredExtractionError(
			"response did not match the output schema ("+directErr.Error()+")", envErr)
	}
	return &envelope.Data, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
