package httpapi

import (
	"context"
	"strings"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tchat/internal/eventbus"
	"pkt.systems/tchat/internal/format"
	"pkt.systems/tchat/internal/logx"
	"pkt.systems/tchat/schema"
)

// Hub tracks relay participants and broadcasts formatted chat lines.
type Hub struct {
	bus *eventbus.Bus
	now func() time.Time

	mu    sync.Mutex
	nicks map[string]string
}

// NewHub constructs a hub whose subscribers buffer depth lines.
func NewHub(logger pslog.Logger, depth int) *Hub {
	return &Hub{
		bus:   eventbus.New(logger, depth),
		now:   time.Now,
		nicks: make(map[string]string),
	}
}

// Join registers a connection under nick, announces it to everyone else,
// and returns the connection's broadcast feed.
func (h *Hub) Join(ctx context.Context, connID, nick string) (<-chan eventbus.Event, func()) {
	events, cancel := h.bus.Subscribe(connID)
	h.mu.Lock()
	h.nicks[connID] = nick
	h.mu.Unlock()
	logx.WithConn(ctx, connID).Info("relay join", "nick", nick, "clients", h.bus.Count())
	h.bus.Publish(eventbus.Event{Text: format.Joined(h.timestamp(), nick), Exclude: connID})
	return events, cancel
}

// Leave forgets a connection and announces its departure.
func (h *Hub) Leave(ctx context.Context, connID string) {
	h.mu.Lock()
	nick, ok := h.nicks[connID]
	delete(h.nicks, connID)
	h.mu.Unlock()
	if !ok {
		return
	}
	logx.WithConn(ctx, connID).Info("relay leave", "nick", nick)
	h.bus.Publish(eventbus.Event{Text: format.Left(h.timestamp(), nick), Exclude: connID})
}

// Receive handles one inbound frame. An envelope may rename the sender
// before its message is broadcast; any other frame is the message itself.
func (h *Hub) Receive(ctx context.Context, connID string, data []byte) {
	ts := h.timestamp()
	log := logx.WithConn(ctx, connID)
	h.mu.Lock()
	nick, ok := h.nicks[connID]
	h.mu.Unlock()
	if !ok {
		log.Warn("relay frame from unknown conn")
		return
	}

	message := string(data)
	if env, isEnvelope := schema.DecodeEnvelope(data); isEnvelope {
		message = env.Message
		if newNick, err := schema.NormalizeNick(env.Nick); err == nil && string(newNick) != nick {
			h.mu.Lock()
			h.nicks[connID] = string(newNick)
			h.mu.Unlock()
			log.Info("relay rename", "from", nick, "to", newNick)
			h.bus.Publish(eventbus.Event{Text: format.Renamed(h.timestamp(), nick, string(newNick))})
			nick = string(newNick)
		}
	}
	if strings.TrimSpace(message) == "" {
		log.Trace("relay empty message dropped")
		return
	}
	log.Debug("relay message", "nick", nick, "bytes", len(message))
	h.bus.Publish(eventbus.Event{Text: format.ChatMessage(ts, nick, message)})
}

// Nick returns the current nick of a connection.
func (h *Hub) Nick(connID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	nick, ok := h.nicks[connID]
	return nick, ok
}

// Clients returns the number of connected participants.
func (h *Hub) Clients() int {
	return h.bus.Count()
}

func (h *Hub) timestamp() string {
	return format.Timestamp(h.now())
}
