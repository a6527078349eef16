package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/osintdeck/osintdeck/internal/model"
	"github.com/osintdeck/osintdeck/internal/orchestrator"
)

const (
	// outboundBufferSize absorbs result bursts between client reads.
	outboundBufferSize = 256

	// writeWait bounds a single frame write to a slow or dead peer.
	writeWait = 10 * time.Second

	// pongWait is how long the peer may stay silent before the read
	// loop gives up on the connection.
	pongWait = 60 * time.Second

	// pingPeriod keeps pings inside the pong window.
	pingPeriod = (pongWait * 9) / 10
)

// Conn is the transport surface a session needs. *websocket.Conn
// (gorilla) satisfies it; tests use an in-memory fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Submitter accepts searches and cancellations. The orchestrator
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req model.SearchRequest) (<-chan model.Event, error)
	Cancel(requestID string) error
}

// clientMessage is the inbound wire shape.
type clientMessage struct {
	Event   string `json:"event"`
	Payload struct {
		Input      string `json:"input"`
		SearchType string `json:"search_type"`
	} `json:"payload"`
}

// Session is one client channel bound to one topic. It owns the
// connection: a single writer goroutine serializes every outbound
// event, and the Run loop is the only reader.
type Session struct {
	conn      Conn
	topic     model.Topic
	submitter Submitter
	logger    *slog.Logger

	outbound     chan model.Event
	done         chan struct{}
	pingInterval time.Duration

	mu        sync.Mutex
	currentID string
	closeOnce sync.Once
	writerWG  sync.WaitGroup
}

// Manager builds sessions over a shared submitter.
type Manager struct {
	submitter    Submitter
	logger       *slog.Logger
	pingInterval time.Duration
}

// NewManager creates a session manager.
func NewManager(submitter Submitter, logger *slog.Logger) *Manager {
	return &Manager{submitter: submitter, logger: logger, pingInterval: pingPeriod}
}

// Open binds a connection to a topic, sends the greeting, and starts
// the writer. The caller runs the read loop via Run.
func (m *Manager) Open(conn Conn, topic model.Topic) *Session {
	s := &Session{
		conn:         conn,
		topic:        topic,
		submitter:    m.submitter,
		logger:       m.logger.With("topic", topic.String()),
		outbound:     make(chan model.Event, outboundBufferSize),
		done:         make(chan struct{}),
		pingInterval: m.pingInterval,
	}

	s.writerWG.Add(1)
	go s.writeLoop()

	s.send(model.NewConnectionEvent())
	s.logger.Debug("session opened")
	return s
}

// Run reads client messages until the connection drops or ctx ends,
// then closes the session. It is the session's lifecycle: when Run
// returns, any in-flight request has been cancelled.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()

	// Pong replies from the writer's pings push the read deadline
	// forward; a dead peer makes ReadMessage fail instead of blocking
	// forever.
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck // Best effort before the first read
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.logger.Debug("session read ended", "error", err)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("malformed client message", "error", err)
			s.send(model.NewErrorEvent("malformed message"))
			continue
		}

		switch msg.Event {
		case s.topic.SearchEvent():
			s.startSearch(ctx, msg)
		case s.topic.CancelEvent():
			s.cancelCurrent()
		default:
			s.logger.Warn("unknown client event", "event", msg.Event)
			s.send(model.NewErrorEvent("unknown event"))
		}
	}
}

// startSearch launches a request, superseding any in-flight one on
// this channel.
func (s *Session) startSearch(ctx context.Context, msg clientMessage) {
	req := model.NewSearchRequest(s.topic, msg.Payload.Input, msg.Payload.SearchType)

	s.mu.Lock()
	prev := s.currentID
	s.currentID = req.ID
	s.mu.Unlock()

	if prev != "" {
		// A new search on a channel replaces the old one outright.
		if err := s.submitter.Cancel(prev); err == nil {
			s.logger.Info("superseded in-flight search", "request_id", prev)
		}
	}

	events, err := s.submitter.Submit(ctx, req)
	if err != nil {
		s.logger.Warn("submit rejected", "request_id", req.ID, "error", err)
		s.send(model.NewErrorEvent("search could not be started"))
		s.send(model.NewCompleteEvent())
		return
	}

	go s.forward(req.ID, events)
}

// forward pumps one request's events to the client until its stream
// closes. Events for superseded requests are suppressed so the client
// only ever sees the latest search's stream.
func (s *Session) forward(requestID string, events <-chan model.Event) {
	for ev := range events {
		s.mu.Lock()
		current := s.currentID == requestID
		s.mu.Unlock()
		if current {
			s.send(ev)
		}
	}

	// The stream has ended; a later cancel must not target a finished
	// request unless a newer search already took over.
	s.mu.Lock()
	if s.currentID == requestID {
		s.currentID = ""
	}
	s.mu.Unlock()
}

// cancelCurrent serves a client cancel event. The cancellation ack
// travels back through the request's event stream, so a cancel with
// nothing in flight, or one racing an already finished request, is a
// no-op: the client never sees an ack after search_complete.
func (s *Session) cancelCurrent() {
	s.mu.Lock()
	id := s.currentID
	s.mu.Unlock()

	if id == "" {
		return
	}
	if err := s.submitter.Cancel(id); err != nil && !errors.Is(err, orchestrator.ErrUnknownRequest) {
		s.logger.Warn("cancel failed", "request_id", id, "error", err)
	}
}

// send enqueues an event unless the session is closed.
func (s *Session) send(ev model.Event) {
	select {
	case <-s.done:
	case s.outbound <- ev:
	}
}

// writeLoop is the session's single writer. It also owns the ping
// ticker, so pings and events never interleave on the wire.
func (s *Session) writeLoop() {
	defer s.writerWG.Done()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // WriteJSON surfaces the failure
			if err := s.conn.WriteJSON(ev); err != nil {
				s.logger.Debug("session write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.logger.Debug("session ping failed", "error", err)
				return
			}
		}
	}
}

// Close tears the session down: cancels any in-flight request, stops
// the writer, and closes the connection. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		id := s.currentID
		s.currentID = ""
		s.mu.Unlock()

		if id != "" {
			_ = s.submitter.Cancel(id) //nolint:errcheck // Request may have finished already
		}

		close(s.done)
		s.writerWG.Wait()
		_ = s.conn.Close() //nolint:errcheck // Connection may be gone already
		s.logger.Debug("session closed")
	})
}
