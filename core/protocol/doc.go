// Package protocol compiles declarative actor definitions into runtime
// instances.
//
// A [Protocol] pairs a state schema with message handlers. Instead of an
// interpreted expression language, handlers are built from a closed, typed
// action vocabulary that is validated against the schema when the protocol
// is compiled:
//
//	counter := &protocol.Protocol{
//	    Name: "counter",
//	    State: protocol.Schema{Fields: map[string]protocol.Field{
//	        "count": {Type: protocol.TypeNumber, Default: 0},
//	    }},
//	    Receives: map[string]protocol.Handler{
//	        "increment": {
//	            Action:  protocol.Increment("count"),
//	            Returns: protocol.ReturnField("count"),
//	        },
//	        "get-count": {Returns: protocol.ReturnField("count")},
//	    },
//	}
//
//	factory, err := protocol.Compile(counter)
//	inst := factory.New(nil)
//	v, err := inst.Receive(ctx, "increment", nil) // 1
//
// Compilation rejects actions that reference unknown fields or mismatch the
// field type (Increment on a string field, Push on a non-array field). A
// handler's action runs before its return expression; both see the current
// state and the inbound payload. Mutations applied before a failing step are
// kept, there is no rollback.
package protocol
