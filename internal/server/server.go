// Package server exposes filesystem events to websocket subscribers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/fsevents/logging"
)

const writeTimeout = 10 * time.Second

// eventPayload is the JSON shape sent to subscribers.
type eventPayload struct {
	Path      string    `json:"path"`
	Op        string    `json:"op"`
	Flags     string    `json:"flags,omitempty"`
	ID        uint64    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Server serves the /events websocket endpoint backed by a Bus.
type Server struct {
	logger   *logrus.Entry
	bus      *Bus
	server   *http.Server
	upgrader websocket.Upgrader
}

// New creates a server broadcasting events published on bus.
func New(bus *Bus) *Server {
	return &Server{
		logger: logging.NewLogger("serve"),
		bus:    bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/events", s.handleEvents)
	return mux
}

// ListenAndServe starts the server on addr. It blocks until the server
// stops or fails.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.WithField("addr", addr).Info("Serving events")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleEvents upgrades the connection and streams events until the
// subscriber disconnects or the bus closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	output, cancel := s.bus.Subscribe()
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	s.logger.WithField("remote", conn.RemoteAddr().String()).Debug("subscriber connected")

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case ev, ok := <-output:
				if !ok {
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeTimeout))
					return
				}
				payload := eventPayload{
					Path:      ev.Path,
					Op:        ev.Op.String(),
					ID:        ev.ID,
					Timestamp: time.Now().UTC(),
				}
				if ev.Flags != 0 {
					payload.Flags = ev.Flags.String()
				}
				if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return
				}
				if err := conn.WriteJSON(payload); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
