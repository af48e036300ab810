package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
	"pkt.systems/tchat/internal/logx"
	"pkt.systems/tchat/internal/version"
)

const writeTimeout = 10 * time.Second

// Server is the WebSocket chat relay.
type Server struct {
	cfg      Config
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer constructs a relay around hub.
func NewServer(cfg Config, hub *Hub) *Server {
	return &Server{
		cfg: cfg.withDefaults(),
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns an http.Handler for the relay.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleChat)
	mux.HandleFunc("/ws", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	return withRequestLogging(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
		"version": version.Current(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusUpgradeRequired)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Ctx(r.Context()).Debug("relay upgrade failed", "err", err)
		return
	}
	connID := uuid.NewString()
	nick := clientIP(r)
	log := logx.WithConn(r.Context(), connID).With("remote", nick)
	ctx, cancel := context.WithCancel(logx.ContextWithConnLogger(r.Context(), log, connID))
	defer cancel()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	events, unsubscribe := s.hub.Join(ctx, connID, nick)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for event := range events {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(event.Text)); err != nil {
				log.Debug("relay write failed", "err", err)
				return
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("relay read failed", "err", err)
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		s.hub.Receive(ctx, connID, data)
	}

	unsubscribe()
	cancel()
	wg.Wait()
	s.hub.Leave(ctx, connID)
	_ = conn.Close()
}
