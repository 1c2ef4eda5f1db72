package remote

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Stats receives session and traffic counts. *metrics.Observer implements
// it.
type Stats interface {
	SessionOpened()
	SessionClosed()
	BatchSent(ops int)
	EventReceived(event string, delivered bool)
}

type nopStats struct{}

func (nopStats) SessionOpened()             {}
func (nopStats) SessionClosed()             {}
func (nopStats) BatchSent(int)              {}
func (nopStats) EventReceived(string, bool) {}

// ServerConfig configures the remote host server.
type ServerConfig struct {
	// Addr is the listen address used by Run.
	Addr string

	// Path is the WebSocket endpoint.
	// Default: "/ws"
	Path string

	// App builds the root element of a new session. Required.
	App func() *vdom.Element

	// NewObserver, if set, creates the observer for one session's root.
	// It is called once per session because observers such as the tracing
	// observer keep per-root state.
	NewObserver func(sessionID string) vdom.Observer

	// Stats records session and traffic counts.
	Stats Stats

	// ReadTimeout is how long a session may stay silent before it is closed.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// ReadLimit caps a single inbound message in bytes.
	ReadLimit int64

	// MaxEventQueue is the number of events buffered per session.
	MaxEventQueue int

	// ShutdownTimeout bounds Shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin validates the Origin header of upgrade requests.
	// nil accepts same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// MetricsPath and MetricsHandler mount a metrics endpoint when the
	// handler is non-nil.
	MetricsPath    string
	MetricsHandler http.Handler

	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:            "localhost:7070",
		Path:            "/ws",
		Stats:           nopStats{},
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		ReadLimit:       64 * 1024,
		MaxEventQueue:   256,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     "/metrics",
	}
}

// Server accepts replica connections and runs one render root per session.
type Server struct {
	config   *ServerConfig
	upgrader websocket.Upgrader
	router   chi.Router
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closing  bool
	wg       sync.WaitGroup

	httpServer *http.Server
}

// NewServer creates a server. Zero-valued config fields take their defaults.
func NewServer(config *ServerConfig) *Server {
	defaults := DefaultServerConfig()
	if config == nil {
		config = defaults
	}
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if config.Stats == nil {
		config.Stats = defaults.Stats
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.ReadLimit == 0 {
		config.ReadLimit = defaults.ReadLimit
	}
	if config.MaxEventQueue == 0 {
		config.MaxEventQueue = defaults.MaxEventQueue
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.MetricsPath == "" {
		config.MetricsPath = defaults.MetricsPath
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:   logger.With("component", "remote"),
		sessions: make(map[string]*Session),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get(s.config.Path, s.HandleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Get("/sessions", s.handleSessions)
	r.Get("/snapshot/{session}", s.handleSnapshot)
	if s.config.MetricsHandler != nil {
		r.Handle(s.config.MetricsPath, s.config.MetricsHandler)
	}
	return r
}

// Handler returns the server's HTTP handler.
//
//	srv := remote.NewServer(cfg)
//	http.ListenAndServe(":7070", srv.Handler())
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HandleWebSocket upgrades the request and runs a session until the
// connection ends.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.config.App == nil {
		http.Error(w, "no app configured", http.StatusInternalServerError)
		return
	}
	if s.isClosing() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.ReadLimit)

	id := newSessionID()
	logger := s.logger.With("session_id", id)
	session := newSession(id, conn, s.config, logger)

	if err := session.sendHello(); err != nil {
		logger.Error("hello write failed", "error", err)
		conn.Close()
		return
	}

	// Shutdown may have started while the handshake ran.
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		logger.Info("session refused during shutdown")
		session.Close()
		return
	}
	s.sessions[id] = session
	s.wg.Add(1)
	s.mu.Unlock()
	s.config.Stats.SessionOpened()
	logger.Info("session started", "remote_addr", r.RemoteAddr)

	defer func() {
		session.Close()
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		s.config.Stats.SessionClosed()
		logger.Info("session ended",
			"events", session.Events(),
			"ops", session.Ops(),
			"duration", time.Since(session.CreatedAt))
		s.wg.Done()
	}()

	go session.readLoop()
	session.eventLoop()
}

func (s *Server) isClosing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closing
}

// Session returns a live session by ID, or nil.
func (s *Server) Session(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// SessionIDs returns the IDs of live sessions in sorted order.
func (s *Server) SessionIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": len(s.SessionIDs()),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.SessionIDs())
}

// handleSnapshot serves the current tree of a session. ?format=yaml
// switches the encoding.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	session := s.Session(id)
	if session == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	format := snapshot.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = snapshot.ParseFormat(f); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var snap *snapshot.Snapshot
	err := session.Do(r.Context(), func(_ *memhost.Document, container *memhost.Node) {
		snap = snapshot.Take(id, container)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	data, err := snap.Encode(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(data)
}

// Run serves on config.Addr until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closing = true
	for _, session := range s.sessions {
		session.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	// Hijacked connections are not tracked by http.Server.
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newSessionID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
