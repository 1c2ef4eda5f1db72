package remote

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// ErrSessionClosed is returned by Do after the session has ended.
var ErrSessionClosed = errors.New("remote: session closed")

// Session is one connected replica. All rendering, event handling and
// dispatched functions run on the session's event loop goroutine; only
// that goroutine touches the root and the document.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn      *websocket.Conn
	config    *ServerConfig
	logger    *slog.Logger
	host      *Host
	root      *vdom.Root
	container *memhost.Node

	events     chan *protocol.EventMessage
	dispatchCh chan func()
	done       chan struct{}
	closeOnce  sync.Once

	// mu guards writes to conn.
	mu      sync.Mutex
	sendSeq uint64

	eventCount atomic.Uint64
	opCount    atomic.Uint64
}

func newSession(id string, conn *websocket.Conn, config *ServerConfig, logger *slog.Logger) *Session {
	doc := memhost.New()
	host := NewHost(doc)

	opts := []vdom.Option{vdom.WithLogger(logger)}
	if config.NewObserver != nil {
		opts = append(opts, vdom.WithObserver(config.NewObserver(id)))
	}

	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		conn:       conn,
		config:     config,
		logger:     logger,
		host:       host,
		root:       vdom.NewRoot(host, opts...),
		container:  doc.NewContainer("root"),
		events:     make(chan *protocol.EventMessage, config.MaxEventQueue),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		done:       make(chan struct{}),
	}
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Events returns the number of events received.
func (s *Session) Events() uint64 { return s.eventCount.Load() }

// Ops returns the number of host operations sent.
func (s *Session) Ops() uint64 { return s.opCount.Load() }

// Close ends the session and closes the connection. It is safe to call more
// than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.conn.Close()
		s.mu.Unlock()
	})
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Do runs fn on the event loop and waits for it to finish. Operations fn
// causes on the tree are sent to the replica afterwards.
func (s *Session) Do(ctx context.Context, fn func(doc *memhost.Document, container *memhost.Node)) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn(s.host.Document(), s.container)
	}

	select {
	case s.dispatchCh <- wrapped:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readLoop reads frames until the connection fails and queues events for
// the event loop.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && !s.closed() {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.sendError(protocol.ErrInvalidFrame, err.Error(), false)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
			s.sendError(protocol.ErrInvalidFrame, "unexpected "+frame.Type.String()+" frame", false)
		}
	}
}

func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		s.sendError(protocol.ErrInvalidEvent, "invalid event format", false)
		return
	}

	select {
	case s.events <- ev:
	case <-s.done:
	default:
		s.logger.Warn("event queue full", "type", ev.Type, "node", ev.NodeID)
		s.sendError(protocol.ErrServerError, "event queue full", false)
	}
}

// eventLoop renders the app, then processes events and dispatched
// functions until the session ends.
func (s *Session) eventLoop() {
	s.execute(func() {
		s.root.Render(s.config.App(), s.container)
	}, protocol.FlagInitial)

	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)

		case fn := <-s.dispatchCh:
			s.execute(fn, 0)

		case <-s.done:
			return
		}
	}
}

func (s *Session) handleEvent(ev *protocol.EventMessage) {
	s.eventCount.Add(1)
	delivered := false
	s.execute(func() {
		_, delivered = s.host.Document().DispatchByID(ev.NodeID, memhost.Event{
			Type: ev.Type,
			Data: ev.Data,
		})
	}, 0)

	s.config.Stats.EventReceived(ev.Type, delivered)
	if !delivered {
		s.logger.Debug("event for unknown node", "node", ev.NodeID, "type", ev.Type)
		s.sendError(protocol.ErrUnknownNode, "unknown node", false)
	}
}

// execute runs fn with panic recovery and sends whatever operations it
// recorded, including those recorded before a panic: they have already
// been applied to the server document.
func (s *Session) execute(fn func(), flags protocol.FrameFlags) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("dispatch panic",
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
	s.flush(flags)
}

// flush sends the pending operations as one batch.
func (s *Session) flush(flags protocol.FrameFlags) {
	ops := s.host.Flush()
	if len(ops) == 0 && flags == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return
	}

	s.sendSeq++
	frame := protocol.NewFrame(protocol.FrameOps, protocol.EncodeBatch(&protocol.Batch{
		Seq: s.sendSeq,
		Ops: ops,
	}))
	frame.Flags = flags

	if err := s.write(frame); err != nil {
		s.logger.Error("write error", "error", err)
		go s.Close()
		return
	}
	s.opCount.Add(uint64(len(ops)))
	s.config.Stats.BatchSent(len(ops))
}

func (s *Session) sendHello() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(protocol.NewFrame(protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
		Version:   protocol.Version,
		Session:   s.ID,
		Container: s.container.ID(),
	})))
}

func (s *Session) sendError(code protocol.ErrorCode, message string, fatal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return
	}
	payload := protocol.EncodeErrorMessage(&protocol.ErrorMessage{Code: code, Message: message, Fatal: fatal})
	if err := s.write(protocol.NewFrame(protocol.FrameError, payload)); err != nil {
		s.logger.Error("error frame write failed", "error", err)
	}
}

// write must be called with mu held.
func (s *Session) write(f *protocol.Frame) error {
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}
