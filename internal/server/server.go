package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/osintdeck/osintdeck/internal/history"
	"github.com/osintdeck/osintdeck/internal/model"
	"github.com/osintdeck/osintdeck/internal/provider"
	"github.com/osintdeck/osintdeck/internal/session"
)

// shutdownTimeout bounds how long graceful shutdown waits for open
// connections before forcing them closed.
const shutdownTimeout = 10 * time.Second

// HistoryReader is the read side of the history store the API serves.
// A nil reader disables the history endpoint.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Server binds the session manager and registry to an HTTP listener.
type Server struct {
	addr     string
	manager  *session.Manager
	registry *provider.Registry
	history  HistoryReader
	logger   *slog.Logger

	engine   *gin.Engine
	upgrader websocket.Upgrader
}

// New creates a server. history may be nil when persistence is disabled.
func New(addr string, manager *session.Manager, registry *provider.Registry, hist HistoryReader, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     addr,
		manager:  manager,
		registry: registry,
		history:  hist,
		logger:   logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			// Origin checking is left to the CORS policy; channels carry
			// no ambient credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware(), loggingMiddleware(logger))

	r.GET("/ws/:topic", s.handleChannel)

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/history", s.handleHistory)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleChannel upgrades a connection and runs it as a session bound to
// the path topic. The request context ends the session when the server
// shuts down.
func (s *Server) handleChannel(c *gin.Context) {
	topic, err := model.ParseTopic(c.Param("topic"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if len(s.registry.ForTopic(topic)) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no providers registered for topic " + topic.String()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Warn("websocket upgrade failed", "topic", topic.String(), "error", err)
		return
	}

	sess := s.manager.Open(conn, topic)
	sess.Run(c.Request.Context())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"topics": s.registry.Inventory(),
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
