package nats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/aspace-go/core/space"
)

type echoTestActor struct{}

func (echoTestActor) Receive(_ context.Context, _ string, data any) (any, error) {
	return data, nil
}

func TestNats_Connect(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))

	nc1, disconnect1, err := connect()
	require.NoError(t, err)
	require.NotNil(t, nc1)
	require.Equal(t, "CONNECTED", nc1.Status().String())

	nc2, disconnect2, err := connect()
	require.NoError(t, err)
	require.Same(t, nc1, nc2)

	disconnect1()
	disconnect2()
	require.Equal(t, "CLOSED", nc1.Status().String())
}

func dialPair(t *testing.T, connect Connector, name string) (*Transport, *Transport) {
	t.Helper()
	a, err := Dial(TransportConfig{Connect: connect, Name: name, Side: SideA})
	require.NoError(t, err)
	b, err := Dial(TransportConfig{Connect: connect, Name: name, Side: SideB})
	require.NoError(t, err)
	return a, b
}

func TestTransport_PairRoundTrip(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))
	a, b := dialPair(t, connect, "round trip pair")

	require.Equal(t, space.StateOpen, a.ReadyState())
	require.Equal(t, space.StateOpen, b.ReadyState())

	fromA := make(chan string, 1)
	fromB := make(chan string, 1)
	a.Bind(space.Events{OnMessage: func(text string) { fromB <- text }})
	b.Bind(space.Events{OnMessage: func(text string) { fromA <- text }})

	require.NoError(t, a.Send("ping"))
	select {
	case got := <-fromA:
		require.Equal(t, "ping", got)
	case <-time.After(5 * time.Second):
		t.Fatal("b never received")
	}

	require.NoError(t, b.Send("pong"))
	select {
	case got := <-fromB:
		require.Equal(t, "pong", got)
	case <-time.After(5 * time.Second):
		t.Fatal("a never received")
	}

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
}

func TestTransport_ClosePropagatesToPeer(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))
	a, b := dialPair(t, connect, "close pair")

	closed := make(chan struct{})
	a.Bind(space.Events{})
	b.Bind(space.Events{OnClose: func() { close(closed) }})

	require.NoError(t, a.Close())
	require.Equal(t, space.StateClosed, a.ReadyState())

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("peer never observed the close")
	}
	require.Equal(t, space.StateClosed, b.ReadyState())
	require.ErrorIs(t, b.Send("late"), space.ErrTransportClosed)
}

func TestTransport_SpacesOverNATS(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))
	a, b := dialPair(t, connect, "space pair")

	server := space.New("server")
	require.NoError(t, server.Register("echo", echoTestActor{}))
	_, err := server.AddChannel(a)
	require.NoError(t, err)

	client := space.New("client")
	ch, err := client.AddChannel(b)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = server.Destroy()
		_ = client.Destroy()
	})

	v, err := ch.Remote("echo").Receive(t.Context(), "echo", map[string]any{"over": "nats"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"over": "nats"}, v)
}
