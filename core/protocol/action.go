package protocol

import "fmt"

type (
	// Action is one step of a handler's state mutation. The vocabulary is
	// closed: only the constructors in this package produce actions, and
	// every action is checked against the schema at compile time.
	Action interface {
		validate(s Schema) error
		apply(state map[string]any, data any) error
	}

	// Value is the source of an operand: a literal, the inbound payload, or
	// one field of the inbound payload.
	Value interface {
		resolve(data any) (any, error)
		validate() error
	}
)

// === values ===

type litValue struct {
	v   any
	err error
}

// Literal yields a fixed JSON-serializable value. The value is normalized
// once, so Literal(3) resolves to float64(3) just like a payload would.
func Literal(v any) Value {
	norm, err := normalize(v)
	return litValue{v: norm, err: err}
}

func (l litValue) validate() error          { return l.err }
func (l litValue) resolve(any) (any, error) { return l.v, nil }

type dataValue struct{}

// Data yields the whole inbound payload.
func Data() Value { return dataValue{} }

func (dataValue) validate() error { return nil }
func (dataValue) resolve(data any) (any, error) {
	return data, nil
}

type dataFieldValue struct{ name string }

// DataField yields one field of the inbound payload, which must be a JSON
// object. A missing field resolves to nil.
func DataField(name string) Value { return dataFieldValue{name: name} }

func (dataFieldValue) validate() error { return nil }
func (v dataFieldValue) resolve(data any) (any, error) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is not an object, cannot read field %q", v.name)
	}
	return obj[v.name], nil
}

// === actions ===

type incAction struct {
	field string
	delta float64
}

// Increment adds 1 to a number field.
func Increment(field string) Action { return incAction{field: field, delta: 1} }

// Decrement subtracts 1 from a number field.
func Decrement(field string) Action { return incAction{field: field, delta: -1} }

func (a incAction) validate(s Schema) error {
	f, err := s.field(a.field)
	if err != nil {
		return err
	}
	if f.Type != TypeNumber {
		return fmt.Errorf("field %q has type %q, increment/decrement requires %q", a.field, f.Type, TypeNumber)
	}
	return nil
}

func (a incAction) apply(state map[string]any, _ any) error {
	cur, ok := state[a.field].(float64)
	if !ok && state[a.field] != nil {
		return fmt.Errorf("state field %q holds %T, expected number", a.field, state[a.field])
	}
	state[a.field] = cur + a.delta
	return nil
}

type setAction struct {
	field string
	value Value
}

// Set assigns a value to a state field. Literal values are type-checked
// against the field at compile time; payload-sourced values at apply time.
func Set(field string, v Value) Action { return setAction{field: field, value: v} }

func (a setAction) validate(s Schema) error {
	f, err := s.field(a.field)
	if err != nil {
		return err
	}
	if err := a.value.validate(); err != nil {
		return err
	}
	if lit, ok := a.value.(litValue); ok {
		if err := typeCheck(f.Type, lit.v); err != nil {
			return fmt.Errorf("set %q: %w", a.field, err)
		}
	}
	return nil
}

func (a setAction) apply(state map[string]any, data any) error {
	v, err := a.value.resolve(data)
	if err != nil {
		return err
	}
	state[a.field] = copyValue(v)
	return nil
}

type pushAction struct {
	field string
	value Value
}

// Push appends a value to an array field.
func Push(field string, v Value) Action { return pushAction{field: field, value: v} }

func (a pushAction) validate(s Schema) error {
	f, err := s.field(a.field)
	if err != nil {
		return err
	}
	if f.Type != TypeArray {
		return fmt.Errorf("field %q has type %q, push requires %q", a.field, f.Type, TypeArray)
	}
	return a.value.validate()
}

func (a pushAction) apply(state map[string]any, data any) error {
	arr, ok := state[a.field].([]any)
	if !ok && state[a.field] != nil {
		return fmt.Errorf("state field %q holds %T, expected array", a.field, state[a.field])
	}
	v, err := a.value.resolve(data)
	if err != nil {
		return err
	}
	state[a.field] = append(arr, copyValue(v))
	return nil
}

type seqAction struct{ steps []Action }

// Steps runs actions in order, stopping at the first failure. Mutations
// applied by earlier steps are kept.
func Steps(actions ...Action) Action { return seqAction{steps: actions} }

func (a seqAction) validate(s Schema) error {
	for i, step := range a.steps {
		if err := step.validate(s); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (a seqAction) apply(state map[string]any, data any) error {
	for _, step := range a.steps {
		if err := step.apply(state, data); err != nil {
			return err
		}
	}
	return nil
}
