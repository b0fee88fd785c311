// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/peka01/gurch/internal/cache"
	"github.com/peka01/gurch/internal/game"
	"github.com/peka01/gurch/internal/models"
)

const (
	sendBuffer      = 64
	writeTimeout    = 5 * time.Second
	pingInterval    = 15 * time.Second
	shutdownTimeout = 5 * time.Second

	defaultHistory = 50
	maxHistory     = 500
)

// Server carries the table to the human seat over a WebSocket. There is one
// human per table, so only the newest connection is live; an older one is
// dropped when a new one arrives.
type Server struct {
	Game  *game.GurchGame
	Human uuid.UUID
	Log   logrus.FieldLogger

	// OriginPatterns lists the browser origins allowed to connect.
	// Requests without an Origin header are always accepted.
	OriginPatterns []string

	mu        sync.Mutex
	current   *client
	ready     chan struct{}
	readyOnce sync.Once
}

type client struct {
	conn   *websocket.Conn
	send   chan game.GameEvent
	cancel context.CancelFunc
}

// New creates a Server for g and routes the game's events through it.
func New(g *game.GurchGame, human uuid.UUID, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		Game:           g,
		Human:          human,
		Log:            log.WithField("component", "server"),
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		ready:          make(chan struct{}),
	}
	g.BroadcastFn = s.Broadcast
	g.BroadcastToPlayerFn = s.SendTo
	return s
}

// Ready is closed once the human has connected for the first time.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Handler returns the HTTP routes: /ws, /health and /history.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/history", s.handleHistory)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.Log.WithField("addr", ln.Addr().String()).Info("listening")

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.Log.Info("server stopped")
		return nil
	}
}

// Broadcast queues ev for the connected client. It never blocks; the game
// lock is held while it runs.
func (s *Server) Broadcast(ev game.GameEvent) {
	s.mu.Lock()
	c := s.current
	s.mu.Unlock()
	if c != nil {
		s.enqueue(c, ev)
	}
}

// SendTo queues ev for playerID if that is the human seat.
func (s *Server) SendTo(playerID uuid.UUID, ev game.GameEvent) {
	if playerID != s.Human {
		return
	}
	s.Broadcast(ev)
}

func (s *Server) enqueue(c *client, ev game.GameEvent) {
	select {
	case c.send <- ev:
	default:
		s.Log.WithField("event", ev.Type).Warn("client send buffer full, event dropped")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.Game.Mu.Lock()
	body := map[string]interface{}{
		"status":  "ok",
		"game":    s.Game.ID,
		"hand":    s.Game.HandNumber,
		"started": s.Game.Started,
		"phase":   s.Game.Engine.Phase.String(),
	}
	s.Game.Mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Log.WithError(err).Debug("health response not written")
	}
}

// handleHistory returns this table's most recent historian records.
// ?n= caps how far back to look.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n := int64(defaultHistory)
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive number", http.StatusBadRequest)
			return
		}
		n = min(parsed, maxHistory)
	}

	recs, err := cache.RecentActions(r.Context(), s.Game.ID, n)
	switch {
	case errors.Is(err, cache.ErrNoClient):
		http.Error(w, "history is not recorded", http.StatusServiceUnavailable)
		return
	case err != nil:
		s.Log.WithError(err).Warn("history read failed")
		http.Error(w, "history unavailable", http.StatusBadGateway)
		return
	}
	if recs == nil {
		recs = []cache.GameActionRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recs); err != nil {
		s.Log.WithError(err).Debug("history response not written")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		s.Log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	eg, ctx := errgroup.WithContext(r.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c := &client{conn: conn, send: make(chan game.GameEvent, sendBuffer), cancel: cancel}

	if old := s.attach(c); old != nil {
		s.Log.Info("newer connection replaces the current one")
		old.cancel()
	}
	s.Game.Mu.Lock()
	s.Game.HandleReconnect(s.Human)
	s.Game.Mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	eg.Go(func() error { return s.writeLoop(ctx, c) })
	eg.Go(func() error { return s.readLoop(ctx, c) })
	err = eg.Wait()

	if s.detach(c) {
		s.Game.Mu.Lock()
		s.Game.HandleDisconnect(s.Human)
		s.Game.Mu.Unlock()
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		conn.Close(websocket.StatusNormalClosure, "")
	default:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.Log.WithError(err).Debug("connection ended")
		}
		conn.Close(websocket.StatusGoingAway, "")
	}
}

// attach makes c the live connection and returns the one it replaced.
func (s *Server) attach(c *client) *client {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current
	s.current = c
	return old
}

// detach clears c if it is still the live connection.
func (s *Server) detach(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != c {
		return false
	}
	s.current = nil
	return true
}

func (s *Server) readLoop(ctx context.Context, c *client) error {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}
		var action models.GameAction
		if err := json.Unmarshal(data, &action); err != nil {
			s.enqueue(c, game.GameEvent{Type: game.EventPrivateError, Payload: map[string]interface{}{
				"message": "Messages must be JSON actions.",
			}})
			continue
		}
		s.Game.Mu.Lock()
		s.Game.HandlePlayerAction(s.Human, action)
		s.Game.Mu.Unlock()
	}
}

func (s *Server) writeLoop(ctx context.Context, c *client) error {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, ev)
			cancel()
			if err != nil {
				return err
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return err
			}
		}
	}
}
