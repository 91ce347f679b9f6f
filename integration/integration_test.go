package integration

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/aspace-go/core/protocol"
	"github.com/codewandler/aspace-go/core/registry"
	"github.com/codewandler/aspace-go/core/space"
)

type calculator struct{}

func (calculator) Receive(_ context.Context, messageType string, data any) (any, error) {
	switch messageType {
	case "add":
		m, _ := data.(map[string]any)
		a, _ := m["a"].(float64)
		b, _ := m["b"].(float64)
		return a + b, nil
	case "fail":
		return nil, fmt.Errorf("I failed")
	default:
		return nil, fmt.Errorf("unknown message type %q", messageType)
	}
}

func accountProtocol() *protocol.Protocol {
	return &protocol.Protocol{
		Name: "Account",
		State: protocol.Schema{
			Fields: map[string]protocol.Field{
				"balance": {Type: protocol.TypeNumber, Default: 0},
				"history": {Type: protocol.TypeArray, Default: []any{}},
			},
		},
		Receives: map[string]protocol.Handler{
			"deposit": {
				Action: protocol.Steps(
					protocol.Set("balance", protocol.DataField("balance")),
					protocol.Push("history", protocol.Data()),
				),
				Returns: protocol.ReturnField("balance"),
			},
			"balance": {Returns: protocol.ReturnField("balance")},
			"history": {Returns: protocol.ReturnField("history")},
		},
	}
}

func TestIntegration(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	reg := registry.New()
	require.NoError(t, reg.Register("calculator", registry.ClassDescriptor{
		New: func(map[string]any) (registry.Actor, error) { return calculator{}, nil },
	}))
	require.NoError(t, reg.Register("account", registry.DeclarativeDescriptor{
		Protocol: accountProtocol(),
	}))
	require.Equal(t, []string{"calculator", "account"}, reg.Types())

	calc, err := reg.Spawn("calculator", nil)
	require.NoError(t, err)
	account, err := reg.Spawn("account", nil)
	require.NoError(t, err)

	server := space.New("server")
	require.NoError(t, server.Register("calc-1", calc))
	require.NoError(t, server.Register("account-1", account))

	client := space.New("client")
	a, b := space.NewPipe()
	_, err = server.AddChannel(a)
	require.NoError(t, err)
	ch, err := client.AddChannel(b)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, client.Destroy())
		require.NoError(t, server.Destroy())
	})

	ctx := t.Context()

	// hand-written actor over the wire
	sum, err := ch.Remote("calc-1").Receive(ctx, "add", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	require.Equal(t, float64(3), sum)

	// declarative actor over the wire
	acct := ch.Remote("account-1")
	balance, err := acct.Receive(ctx, "deposit", map[string]any{"balance": 100})
	require.NoError(t, err)
	require.Equal(t, float64(100), balance)

	history, err := space.Call[[]any](ctx, acct, "history", nil)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// local access observes the same state the remote mutated
	local, err := account.Receive(ctx, "balance", nil)
	require.NoError(t, err)
	require.Equal(t, float64(100), local)

	// handler errors travel back to the caller
	_, err = ch.Remote("calc-1").Receive(ctx, "fail", nil)
	require.ErrorIs(t, err, space.ErrRemote)
	require.ErrorContains(t, err, "I failed")

	// notify never produces a reply, even for a failing handler
	require.NoError(t, ch.Remote("calc-1").Notify("fail", nil))
	<-time.After(100 * time.Millisecond)
}
