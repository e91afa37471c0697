package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

var ErrSchemaMismatch = errors.New("output does not match schema")

// OutputSchema validates the data the agent hands to done.
type OutputSchema interface {
	// Describe is the JSON schema shown to the model.
	Describe() string
	// Validate parses data. The returned value becomes History.StructuredOutput.
	Validate(data json.RawMessage) (any, error)
}

// JSONSchema validates against a schema generated from shape and decodes into T.
// shape and T usually differ only in how optional fields are tagged.
type JSONSchema[T any] struct {
	def  *jsonschema.Definition
	text string
}

func NewJSONSchema[T any](shape any) (*JSONSchema[T], error) {
	def, err := jsonschema.GenerateSchemaForType(shape)
	if err != nil {
		return nil, fmt.Errorf("generating output schema: %w", err)
	}
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("encoding output schema: %w", err)
	}
	return &JSONSchema[T]{def: def, text: string(b)}, nil
}

func (s *JSONSchema[T]) Describe() string {
	return s.text
}

// Validate treats null members as absent before checking the schema.
func (s *JSONSchema[T]) Validate(data json.RawMessage) (any, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: no data", ErrSchemaMismatch)
	}
	cleaned, err := dropNulls(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	var out T
	if err := s.def.Unmarshal(string(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return &out, nil
}

func dropNulls(data json.RawMessage) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(stripNull(v))
}

func stripNull(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = stripNull(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = stripNull(t[i])
		}
		return t
	default:
		return v
	}
}
