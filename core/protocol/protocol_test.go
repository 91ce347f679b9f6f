package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func counterProtocol() *Protocol {
	return &Protocol{
		Name: "counter",
		State: Schema{Fields: map[string]Field{
			"count": {Type: TypeNumber, Default: 0},
		}},
		Receives: map[string]Handler{
			"increment": {Action: Increment("count"), Returns: ReturnField("count")},
			"decrement": {Action: Decrement("count"), Returns: ReturnField("count")},
			"get-count": {Returns: ReturnField("count")},
			"reset":     {Action: Set("count", Literal(0))},
		},
	}
}

func TestProtocol_Counter(t *testing.T) {
	f, err := Compile(counterProtocol())
	require.NoError(t, err)

	inst := f.New(nil)

	v, err := inst.Receive(t.Context(), "increment", nil)
	require.NoError(t, err)
	require.Equal(t, float64(1), v)

	v, err = inst.Receive(t.Context(), "increment", nil)
	require.NoError(t, err)
	require.Equal(t, float64(2), v)

	v, err = inst.Receive(t.Context(), "decrement", nil)
	require.NoError(t, err)
	require.Equal(t, float64(1), v)

	v, err = inst.Receive(t.Context(), "get-count", nil)
	require.NoError(t, err)
	require.Equal(t, float64(1), v)

	v, err = inst.Receive(t.Context(), "reset", nil)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = inst.Receive(t.Context(), "get-count", nil)
	require.NoError(t, err)
	require.Equal(t, float64(0), v)
}

func TestProtocol_InstanceIndependence(t *testing.T) {
	f, err := Compile(counterProtocol())
	require.NoError(t, err)

	a := f.New(nil)
	b := f.New(nil)

	_, err = a.Receive(t.Context(), "increment", nil)
	require.NoError(t, err)
	_, err = a.Receive(t.Context(), "increment", nil)
	require.NoError(t, err)

	v, err := b.Receive(t.Context(), "get-count", nil)
	require.NoError(t, err)
	require.Equal(t, float64(0), v)
}

func TestProtocol_UnknownMessageType(t *testing.T) {
	f, err := Compile(counterProtocol())
	require.NoError(t, err)

	_, err = f.New(nil).Receive(t.Context(), "explode", nil)
	require.ErrorIs(t, err, ErrUnknownMessageType)

	var umt *UnknownMessageTypeError
	require.ErrorAs(t, err, &umt)
	require.Equal(t, "explode", umt.MessageType)
	require.Equal(t, []string{"decrement", "get-count", "increment", "reset"}, umt.Known)
}

func TestProtocol_DataSourcedValues(t *testing.T) {
	f, err := Compile(&Protocol{
		Name: "todo",
		State: Schema{Fields: map[string]Field{
			"items": {Type: TypeArray, Default: []any{}},
			"title": {Type: TypeString, Default: ""},
		}},
		Receives: map[string]Handler{
			"add":       {Action: Push("items", DataField("item")), Returns: ReturnField("items")},
			"set-title": {Action: Set("title", Data()), Returns: ReturnField("title")},
			"echo":      {Returns: ReturnData()},
		},
	})
	require.NoError(t, err)

	inst := f.New(nil)

	v, err := inst.Receive(t.Context(), "add", map[string]any{"item": "milk"})
	require.NoError(t, err)
	require.Equal(t, []any{"milk"}, v)

	v, err = inst.Receive(t.Context(), "add", map[string]any{"item": "eggs"})
	require.NoError(t, err)
	require.Equal(t, []any{"milk", "eggs"}, v)

	v, err = inst.Receive(t.Context(), "set-title", "groceries")
	require.NoError(t, err)
	require.Equal(t, "groceries", v)

	payload := map[string]any{"nested": []any{float64(1), "two"}}
	v, err = inst.Receive(t.Context(), "echo", payload)
	require.NoError(t, err)
	require.Equal(t, payload, v)
}

func TestProtocol_ReturnIsDeepCopy(t *testing.T) {
	f, err := Compile(&Protocol{
		State: Schema{Fields: map[string]Field{
			"items": {Type: TypeArray, Default: []any{}},
		}},
		Receives: map[string]Handler{
			"add":  {Action: Push("items", Data())},
			"list": {Returns: ReturnField("items")},
		},
	})
	require.NoError(t, err)

	inst := f.New(nil)
	_, err = inst.Receive(t.Context(), "add", "a")
	require.NoError(t, err)

	v, err := inst.Receive(t.Context(), "list", nil)
	require.NoError(t, err)

	// mutating the returned slice must not leak into actor state
	v.([]any)[0] = "tampered"

	v, err = inst.Receive(t.Context(), "list", nil)
	require.NoError(t, err)
	require.Equal(t, []any{"a"}, v)
}

func TestProtocol_ExecutionError_KeepsPriorMutations(t *testing.T) {
	f, err := Compile(&Protocol{
		State: Schema{Fields: map[string]Field{
			"count": {Type: TypeNumber, Default: 0},
			"last":  {Type: TypeString, Default: ""},
		}},
		Receives: map[string]Handler{
			// increment succeeds, then reading a field off a non-object
			// payload fails; the increment must stick
			"bump": {Action: Steps(
				Increment("count"),
				Set("last", DataField("label")),
			)},
			"get-count": {Returns: ReturnField("count")},
		},
	})
	require.NoError(t, err)

	inst := f.New(nil)

	_, err = inst.Receive(t.Context(), "bump", "not-an-object")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "bump", execErr.MessageType)

	v, err := inst.Receive(t.Context(), "get-count", nil)
	require.NoError(t, err)
	require.Equal(t, float64(1), v)
}

func TestCompile_RejectsInvalidProtocols(t *testing.T) {
	// unknown field in action
	_, err := Compile(&Protocol{
		State:    Schema{Fields: map[string]Field{"count": {Type: TypeNumber, Default: 0}}},
		Receives: map[string]Handler{"inc": {Action: Increment("missing")}},
	})
	require.ErrorContains(t, err, `unknown state field "missing"`)

	// increment on a non-number field
	_, err = Compile(&Protocol{
		State:    Schema{Fields: map[string]Field{"name": {Type: TypeString, Default: ""}}},
		Receives: map[string]Handler{"inc": {Action: Increment("name")}},
	})
	require.ErrorContains(t, err, "increment/decrement requires")

	// push on a non-array field
	_, err = Compile(&Protocol{
		State:    Schema{Fields: map[string]Field{"count": {Type: TypeNumber, Default: 0}}},
		Receives: map[string]Handler{"p": {Action: Push("count", Literal(1))}},
	})
	require.ErrorContains(t, err, "push requires")

	// literal mismatching the target field type
	_, err = Compile(&Protocol{
		State:    Schema{Fields: map[string]Field{"count": {Type: TypeNumber, Default: 0}}},
		Receives: map[string]Handler{"s": {Action: Set("count", Literal("nope"))}},
	})
	require.ErrorContains(t, err, "does not match field type")

	// default mismatching the field type
	_, err = Compile(&Protocol{
		State: Schema{Fields: map[string]Field{"count": {Type: TypeNumber, Default: "zero"}}},
	})
	require.ErrorContains(t, err, "default")

	// unknown field type
	_, err = Compile(&Protocol{
		State: Schema{Fields: map[string]Field{"x": {Type: "integer", Default: 0}}},
	})
	require.ErrorContains(t, err, `invalid type "integer"`)

	// return referencing unknown field
	_, err = Compile(&Protocol{
		State:    Schema{Fields: map[string]Field{}},
		Receives: map[string]Handler{"g": {Returns: ReturnField("ghost")}},
	})
	require.ErrorContains(t, err, `unknown state field "ghost"`)
}

func TestFactory_DefaultsAreDeepCopied(t *testing.T) {
	f, err := Compile(&Protocol{
		State: Schema{Fields: map[string]Field{
			"tags": {Type: TypeArray, Default: []any{"seed"}},
		}},
		Receives: map[string]Handler{
			"tag":  {Action: Push("tags", Data())},
			"list": {Returns: ReturnField("tags")},
		},
	})
	require.NoError(t, err)

	a := f.New(nil)
	_, err = a.Receive(t.Context(), "tag", "extra")
	require.NoError(t, err)

	b := f.New(nil)
	v, err := b.Receive(t.Context(), "list", nil)
	require.NoError(t, err)
	require.Equal(t, []any{"seed"}, v)
}

func TestInstance_ConfigNotMergedIntoState(t *testing.T) {
	f, err := Compile(counterProtocol())
	require.NoError(t, err)

	inst := f.New(map[string]any{"count": 99})
	v, err := inst.Receive(t.Context(), "get-count", nil)
	require.NoError(t, err)
	require.Equal(t, float64(0), v)
	require.Equal(t, map[string]any{"count": 99}, inst.Config())
}
