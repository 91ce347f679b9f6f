// Package space provides location-transparent actor messaging: an
// [Space] exposes local actors under caller-chosen GUIDs, and [Channel]s
// attached to transports let a peer invoke them as if they were local.
//
// # Architecture
//
//   - [Space]: exposure table (GUID -> actor) plus a set of channels
//   - [Channel]: one transport endpoint with request/response correlation
//   - [RemoteHandle]: stateless proxy bound to (channel, GUID)
//   - [Transport]: abstract WebSocket-like endpoint (send / close /
//     readyState / event hooks)
//
// # Usage
//
//	a, b := space.NewPipe()
//
//	server := space.New("server")
//	server.Register("counter-1", counterInstance)
//	_, err := server.AddChannel(a)
//
//	client := space.New("client")
//	ch, err := client.AddChannel(b)
//
//	remote := ch.Remote("counter-1")
//	v, err := remote.Receive(ctx, "increment", nil)
//
// Requests carry a channel-scoped monotonic request ID and may complete in
// any order; the caller owns timeout policy via the context. Closing either
// endpoint of a transport pair drives both to [StateClosed] and rejects
// every pending request with [ErrChannelClosed].
//
// # Wire format
//
// Frames are JSON text. A request is {requestId, targetGuid, messageType,
// payload}; a fire-and-forget notify is the same without requestId; replies
// are {requestId, result} or {requestId, error}. Handler failures always
// produce an error frame, so a caller awaiting a remote call whose handler
// threw gets a rejection instead of a hang.
package space
