package protocol

// Return produces the reply value of a handler, evaluated after its action.
type Return interface {
	validate(s Schema) error
	eval(state map[string]any, data any) (any, error)
}

type returnField struct{ field string }

// ReturnField replies with the current value of a state field.
func ReturnField(field string) Return { return returnField{field: field} }

func (r returnField) validate(s Schema) error {
	_, err := s.field(r.field)
	return err
}

func (r returnField) eval(state map[string]any, _ any) (any, error) {
	return copyValue(state[r.field]), nil
}

type returnLiteral struct {
	v   any
	err error
}

// ReturnLiteral replies with a fixed value.
func ReturnLiteral(v any) Return {
	norm, err := normalize(v)
	return returnLiteral{v: norm, err: err}
}

func (r returnLiteral) validate(Schema) error { return r.err }
func (r returnLiteral) eval(map[string]any, any) (any, error) {
	return r.v, nil
}

type returnData struct{}

// ReturnData echoes the inbound payload back to the caller.
func ReturnData() Return { return returnData{} }

func (returnData) validate(Schema) error { return nil }
func (returnData) eval(_ map[string]any, data any) (any, error) {
	return copyValue(data), nil
}
