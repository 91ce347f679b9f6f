package protocol

import (
	"encoding/json"
	"fmt"
)

// FieldType names the JSON type a state field holds.
type FieldType string

const (
	TypeNumber FieldType = "number"
	TypeString FieldType = "string"
	TypeBool   FieldType = "boolean"
	TypeArray  FieldType = "array"
	TypeObject FieldType = "object"
)

type (
	// Field declares one state field: its JSON type and the default value
	// every fresh instance starts with.
	Field struct {
		Type    FieldType
		Default any
	}

	// Schema is the state shape of a declarative actor.
	Schema struct {
		Fields map[string]Field
	}

	// Handler describes how one message type is processed. Action mutates
	// state, Returns produces the reply value. Both are optional.
	Handler struct {
		Action  Action
		Returns Return
	}

	// Protocol is a declarative actor definition: a named state schema plus
	// a handler per message type.
	Protocol struct {
		Name     string
		State    Schema
		Receives map[string]Handler
	}
)

func (s Schema) field(name string) (Field, error) {
	f, ok := s.Fields[name]
	if !ok {
		return Field{}, fmt.Errorf("unknown state field %q", name)
	}
	return f, nil
}

// validFieldType reports whether ft is one of the declared type names.
func validFieldType(ft FieldType) bool {
	switch ft {
	case TypeNumber, TypeString, TypeBool, TypeArray, TypeObject:
		return true
	}
	return false
}

// typeCheck verifies that v (a normalized JSON value) fits ft. nil is
// accepted for every field type, matching JSON null.
func typeCheck(ft FieldType, v any) error {
	if v == nil {
		return nil
	}
	var ok bool
	switch ft {
	case TypeNumber:
		_, ok = v.(float64)
	case TypeString:
		_, ok = v.(string)
	case TypeBool:
		_, ok = v.(bool)
	case TypeArray:
		_, ok = v.([]any)
	case TypeObject:
		_, ok = v.(map[string]any)
	}
	if !ok {
		return fmt.Errorf("value %v (%T) does not match field type %q", v, v, ft)
	}
	return nil
}

// normalize pushes v through the JSON type system so that literals and
// defaults carry the same representation as values that crossed a channel
// (ints become float64, structs become map[string]any, ...).
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// copyValue deep-copies a normalized JSON value.
func copyValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
