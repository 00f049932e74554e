package ws

import (
	"context"

	"github.com/eapache/queue"

	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/reactor"
)

// Conn is an established websocket connection. Outbound messages are
// buffered through a FIFO so Send never blocks its caller on the wire
// being momentarily busy (spec §4.7's supplemented outbound-buffering
// feature; see SPEC_FULL.md §4.7 and DESIGN.md). The queue drains through
// the single write waiter [*netio.Stream] already serializes, so this
// does not introduce a second concurrent writer.
type Conn struct {
	stream *netio.Stream
	loop   *reactor.EventLoop

	outbox    *queue.Queue
	draining  bool
	lastWrite error
}

// NewConn wraps an already-upgraded stream.
func NewConn(loop *reactor.EventLoop, stream *netio.Stream) *Conn {
	return &Conn{
		stream: stream,
		loop:   loop,
		outbox: queue.New(),
	}
}

// Send enqueues msg for delivery and returns immediately. msg.Payload is
// copied before enqueuing, since callers commonly pass a slice of a reused
// receive buffer (e.g. an echo handler) that would otherwise be overwritten
// by the next inbound frame before the drain task gets to write it. If no
// drain task is currently running, one is spawned to flush the queue.
func (c *Conn) Send(ctx context.Context, msg Message) {
	msg.Payload = append([]byte(nil), msg.Payload...)
	c.outbox.Add(msg)
	if !c.draining {
		c.draining = true
		reactor.SpawnTask(ctx, func(ctx context.Context) (any, error) {
			c.drain(ctx)
			return nil, nil
		})
	}
}

// LastSendError returns the most recent error encountered while draining
// the outbound queue, if any.
func (c *Conn) LastSendError() error {
	return c.lastWrite
}

func (c *Conn) drain(ctx context.Context) {
	defer func() { c.draining = false }()
	for c.outbox.Length() > 0 {
		msg := c.outbox.Peek().(Message)
		if err := SendMessage(ctx, c.stream, msg); err != nil {
			c.lastWrite = err
			return
		}
		c.outbox.Remove()
	}
}

// Receive reads the next inbound frame (spec §4.7 Receive, passed through
// from [ReceiveMessage]).
func (c *Conn) Receive(ctx context.Context, buf []byte) (Message, error) {
	return ReceiveMessage(ctx, c.stream, buf)
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.stream.Close()
}
