package remote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/protocol"
)

// Client is a replica connected to a Server. Next must be called from one
// goroutine; Send may be called from any.
type Client struct {
	conn    *websocket.Conn
	replica *Replica
	session string
	logger  *slog.Logger

	// mu guards writes to conn and the event sequence.
	mu       sync.Mutex
	eventSeq uint64
}

// ClientOption configures Dial.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger *slog.Logger
	header http.Header
	dialer *websocket.Dialer
}

// WithClientLogger sets the client's logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = logger }
}

// WithHeader adds headers to the upgrade request, such as Origin.
func WithHeader(h http.Header) ClientOption {
	return func(o *clientOptions) { o.header = h }
}

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(o *clientOptions) { o.dialer = d }
}

// Dial connects to a server and waits for its Hello. The first batch, which
// builds the initial tree, is read by the first call to Next.
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	o := clientOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	conn, _, err := o.dialer.DialContext(ctx, url, o.header)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn, logger: o.logger}

	frame, err := c.readFrame(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if frame.Type != protocol.FrameHello {
		conn.Close()
		return nil, errors.New(errors.ProtocolFrameType).
			WithDetailf("Expected Hello, got %s.", frame.Type)
	}
	hello, err := protocol.DecodeHello(frame.Payload)
	if err != nil {
		conn.Close()
		return nil, errors.New(errors.ProtocolMalformed).Wrap(err)
	}
	if hello.Version != protocol.Version {
		conn.Close()
		return nil, errors.New(errors.ProtocolMalformed).
			WithDetailf("Server speaks protocol %d, client speaks %d.", hello.Version, protocol.Version)
	}

	c.session = hello.Session
	c.replica = NewReplica(hello.Container)
	c.logger = c.logger.With("session_id", hello.Session)
	c.logger.Debug("connected", "container", hello.Container)
	return c, nil
}

// Session returns the server-assigned session ID.
func (c *Client) Session() string { return c.session }

// Replica returns the local mirror. Read it only from the goroutine that
// calls Next.
func (c *Client) Replica() *Replica { return c.replica }

// Document returns the replica's document.
func (c *Client) Document() *memhost.Document { return c.replica.Document() }

// Container returns the replica's container.
func (c *Client) Container() *memhost.Node { return c.replica.Container() }

// Next reads frames until a batch arrives, applies it and returns it. A
// server error frame is returned as a *protocol.ErrorMessage. Cancelling ctx
// aborts the read and leaves the connection unusable.
func (c *Client) Next(ctx context.Context) (*protocol.Batch, error) {
	for {
		frame, err := c.readFrame(ctx)
		if err != nil {
			return nil, err
		}

		switch frame.Type {
		case protocol.FrameOps:
			batch, err := protocol.DecodeBatch(frame.Payload)
			if err != nil {
				return nil, errors.New(errors.ProtocolMalformed).Wrap(err)
			}
			if err := c.replica.Apply(batch); err != nil {
				return nil, err
			}
			c.logger.Debug("batch applied",
				"seq", batch.Seq,
				"ops", len(batch.Ops),
				"initial", frame.Flags.Has(protocol.FlagInitial))
			return batch, nil

		case protocol.FrameError:
			em, err := protocol.DecodeErrorMessage(frame.Payload)
			if err != nil {
				return nil, errors.New(errors.ProtocolMalformed).Wrap(err)
			}
			return nil, em

		default:
			c.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// Send raises an event on the server node mirrored by n. Bubbling happens
// on the server.
func (c *Client) Send(n *memhost.Node, event, data string) error {
	id, ok := c.replica.ServerID(n)
	if !ok {
		return errors.New(errors.ProtocolUnknownNode).WithDetailf("%v is not mirrored from the server.", n)
	}
	return c.SendTo(id, event, data)
}

// SendTo raises an event on a server node by ID.
func (c *Client) SendTo(serverID uint64, event, data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventSeq++
	frame := protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(&protocol.EventMessage{
		Seq:    c.eventSeq,
		NodeID: serverID,
		Type:   event,
		Data:   data,
	}))
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// Close sends a close message and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) readFrame(ctx context.Context) (*protocol.Frame, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetReadDeadline(deadline)
	} else {
		c.conn.SetReadDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// The read deadline can fire just before the context's timer.
		if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, errors.New(errors.ProtocolMalformed).Wrap(err)
	}
	return frame, nil
}
