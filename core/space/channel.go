package space

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	// reply carries the outcome of one outstanding request.
	reply struct {
		result any
		err    error
	}

	// Channel bridges one transport endpoint to its owning space. It
	// correlates outbound requests with inbound responses via a monotonic
	// request ID scoped to this channel, and dispatches inbound requests to
	// the space's exposure table.
	Channel struct {
		id      string
		log     *slog.Logger
		space   *Space
		tr      Transport
		metrics SpaceMetrics
		ctx     context.Context

		seq atomic.Uint64

		mu      sync.Mutex
		pending map[uint64]chan reply
		closed  bool
	}
)

func newChannel(s *Space, tr Transport) *Channel {
	id := fmt.Sprintf("chan-%s", gonanoid.Must(6))
	return &Channel{
		id:      id,
		log:     s.log.With(slog.String("channel", id)),
		space:   s,
		tr:      tr,
		metrics: s.metrics,
		ctx:     s.ctx,
		pending: make(map[uint64]chan reply),
	}
}

func (c *Channel) bind() {
	c.tr.Bind(Events{
		OnOpen: func() {
			c.log.Debug("transport open")
		},
		OnMessage: c.onMessage,
		OnError: func(err error) {
			c.metrics.TransportError("transport")
			c.log.Warn("transport error", slog.Any("error", err))
		},
		OnClose: c.onClose,
	})
}

// ID returns the channel's generated identifier (used in logs and metrics,
// never on the wire).
func (c *Channel) ID() string { return c.id }

// ReadyState reports the underlying transport state.
func (c *Channel) ReadyState() ReadyState { return c.tr.ReadyState() }

// Remote returns a handle addressing a GUID on the other side of this
// channel. Handles hold no state beyond (channel, guid); multiple handles
// for the same pair are interchangeable.
func (c *Channel) Remote(guid string) *RemoteHandle {
	return &RemoteHandle{ch: c, guid: guid}
}

// Close tears down the transport. Pending requests are rejected with
// ErrChannelClosed.
func (c *Channel) Close() error {
	return c.tr.Close()
}

// request sends one frame and blocks until the matching response arrives,
// ctx is done, or the channel closes. There is no built-in timeout; callers
// bound latency through ctx.
func (c *Channel) request(ctx context.Context, guid, messageType string, data any) (any, error) {
	// an empty guid or messageType would serialize as a response frame and
	// be dropped by the peer
	if guid == "" {
		return nil, fmt.Errorf("guid is required")
	}
	if messageType == "" {
		return nil, fmt.Errorf("messageType is required")
	}

	payload, err := encodeValue(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrChannelClosed
	}
	id := c.seq.Add(1)
	replyCh := make(chan reply, 1)
	c.pending[id] = replyCh
	n := len(c.pending)
	c.mu.Unlock()
	c.metrics.RequestsPending(c.id, n)

	text, err := encodeFrame(frame{
		RequestID:   id,
		TargetGUID:  guid,
		MessageType: messageType,
		Payload:     payload,
	})
	if err != nil {
		c.dropPending(id)
		return nil, err
	}

	defer c.metrics.RequestDuration(messageType).ObserveDuration()

	if err := c.tr.Send(text); err != nil {
		c.dropPending(id)
		c.metrics.TransportError("send")
		c.metrics.RequestCompleted(messageType, false)
		if errors.Is(err, ErrTransportClosed) {
			return nil, fmt.Errorf("%w: %v", ErrChannelClosed, err)
		}
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.dropPending(id)
		c.metrics.RequestCompleted(messageType, false)
		return nil, ctx.Err()
	case r := <-replyCh:
		c.metrics.RequestCompleted(messageType, r.err == nil)
		return r.result, r.err
	}
}

// notify sends a fire-and-forget frame: no request ID, no response expected.
func (c *Channel) notify(guid, messageType string, data any) error {
	if guid == "" {
		return fmt.Errorf("guid is required")
	}
	if messageType == "" {
		return fmt.Errorf("messageType is required")
	}

	payload, err := encodeValue(data)
	if err != nil {
		return err
	}
	text, err := encodeFrame(frame{
		TargetGUID:  guid,
		MessageType: messageType,
		Payload:     payload,
	})
	if err != nil {
		return err
	}
	if err := c.tr.Send(text); err != nil {
		c.metrics.TransportError("send")
		if errors.Is(err, ErrTransportClosed) {
			return fmt.Errorf("%w: %v", ErrChannelClosed, err)
		}
		return err
	}
	c.metrics.NotifySent(messageType)
	return nil
}

func (c *Channel) dropPending(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	n := len(c.pending)
	c.mu.Unlock()
	c.metrics.RequestsPending(c.id, n)
}

// onMessage classifies one inbound frame and routes it.
func (c *Channel) onMessage(text string) {
	f, err := decodeFrame(text)
	if err != nil {
		c.metrics.TransportError("decode")
		c.log.Error("dropping malformed frame", slog.Any("error", err))
		return
	}
	if f.isRequest() {
		c.handleInbound(f)
		return
	}
	c.handleResponse(f)
}

// handleInbound dispatches a request (or notify) to the exposure table. The
// actor runs in its own goroutine so one pending Receive never blocks
// unrelated frames; a handler failure always produces an error frame when
// the caller expects a response.
func (c *Channel) handleInbound(f frame) {
	payload, err := decodeValue(f.Payload)
	if err != nil {
		c.log.Error("dropping request with malformed payload",
			slog.Uint64("request_id", f.RequestID),
			slog.Any("error", err),
		)
		if f.RequestID != 0 {
			c.sendError(f.RequestID, err.Error())
		}
		return
	}

	act, ok := c.space.Lookup(f.TargetGUID)
	if !ok {
		c.metrics.InboundCompleted(f.MessageType, false)
		c.log.Warn("request for unknown guid",
			slog.String("guid", f.TargetGUID),
			slog.String("type", f.MessageType),
		)
		if f.RequestID != 0 {
			c.sendError(f.RequestID, fmt.Sprintf("%v: %q", ErrUnknownGUID, f.TargetGUID))
		}
		return
	}

	go func() {
		result, err := act.Receive(c.ctx, f.MessageType, payload)
		c.metrics.InboundCompleted(f.MessageType, err == nil)

		if f.RequestID == 0 {
			if err != nil {
				c.log.Error("notify handler failed",
					slog.String("guid", f.TargetGUID),
					slog.String("type", f.MessageType),
					slog.Any("error", err),
				)
			}
			return
		}

		if err != nil {
			c.log.Error("handler failed",
				slog.String("guid", f.TargetGUID),
				slog.String("type", f.MessageType),
				slog.Any("error", err),
			)
			c.sendError(f.RequestID, err.Error())
			return
		}
		c.sendResult(f.RequestID, result)
	}()
}

func (c *Channel) sendResult(id uint64, result any) {
	raw, err := encodeValue(result)
	if err != nil {
		c.sendError(id, fmt.Sprintf("result not serializable: %v", err))
		return
	}
	text, err := encodeFrame(frame{RequestID: id, Result: raw})
	if err != nil {
		c.log.Error("failed to encode response", slog.Any("error", err))
		return
	}
	if err := c.tr.Send(text); err != nil {
		c.log.Warn("failed to send response", slog.Uint64("request_id", id), slog.Any("error", err))
	}
}

func (c *Channel) sendError(id uint64, msg string) {
	text, err := encodeFrame(frame{RequestID: id, Error: msg})
	if err != nil {
		c.log.Error("failed to encode error response", slog.Any("error", err))
		return
	}
	if err := c.tr.Send(text); err != nil {
		c.log.Warn("failed to send error response", slog.Uint64("request_id", id), slog.Any("error", err))
	}
}

// handleResponse resolves the matching pending request. Responses arrive in
// any order; matching is purely by request ID.
func (c *Channel) handleResponse(f frame) {
	c.mu.Lock()
	replyCh, ok := c.pending[f.RequestID]
	if ok {
		delete(c.pending, f.RequestID)
	}
	n := len(c.pending)
	c.mu.Unlock()

	if !ok {
		// requester gave up (ctx cancelled) or the frame is stray
		c.log.Debug("dropping response for unknown request", slog.Uint64("request_id", f.RequestID))
		return
	}
	c.metrics.RequestsPending(c.id, n)

	if f.Error != "" {
		replyCh <- reply{err: fmt.Errorf("%w: %s", ErrRemote, f.Error)}
		return
	}
	result, err := decodeValue(f.Result)
	replyCh <- reply{result: result, err: err}
}

// onClose force-rejects every pending request and detaches the channel from
// its space.
func (c *Channel) onClose() {
	c.mu.Lock()
	c.closed = true
	pend := c.pending
	c.pending = make(map[uint64]chan reply)
	c.mu.Unlock()

	for _, replyCh := range pend {
		replyCh <- reply{err: ErrChannelClosed}
	}
	c.metrics.RequestsPending(c.id, 0)

	c.space.removeChannel(c)
	c.log.Debug("closed", slog.Int("rejected_pending", len(pend)))
}

// === RemoteHandle ===

// RemoteHandle is a stateless proxy addressing one GUID on the other side
// of a channel. It is valid exactly as long as its channel is usable.
type RemoteHandle struct {
	ch   *Channel
	guid string
}

// GUID returns the remote address this handle is bound to.
func (h *RemoteHandle) GUID() string { return h.guid }

// Channel returns the channel this handle sends through.
func (h *RemoteHandle) Channel() *Channel { return h.ch }

// Receive invokes the remote actor and waits for its result, exactly like
// calling a local actor's Receive. data must be JSON-serializable.
func (h *RemoteHandle) Receive(ctx context.Context, messageType string, data any) (any, error) {
	return h.ch.request(ctx, h.guid, messageType, data)
}

// Notify sends a fire-and-forget message: no response frame will ever
// arrive, even if the remote handler fails.
func (h *RemoteHandle) Notify(messageType string, data any) error {
	return h.ch.notify(h.guid, messageType, data)
}

// Call invokes a remote actor and decodes the result into OUT.
func Call[OUT any](ctx context.Context, h *RemoteHandle, messageType string, data any) (out OUT, err error) {
	res, err := h.Receive(ctx, messageType, data)
	if err != nil {
		return out, err
	}
	if res == nil {
		return out, nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
