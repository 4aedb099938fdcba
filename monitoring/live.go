package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// PredictionEvent is one completed prediction, broadcast to every connected
// dashboard client. Amounts only; the profile itself is not echoed.
type PredictionEvent struct {
	ID              string    `json:"id"`
	AmountBase      float64   `json:"amount_base"`
	AmountConverted float64   `json:"amount_converted"`
	ConversionRate  float64   `json:"conversion_rate"`
	ElapsedMS       float64   `json:"elapsed_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans prediction events out to WebSocket clients. New clients are
// replayed the most recent events from an LRU buffer before receiving live
// traffic.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool

	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	recent   *lru.Cache[string, PredictionEvent]
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub creates a hub keeping the last recentSize events for replay.
func NewHub(recentSize int, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if recentSize <= 0 {
		recentSize = 64
	}
	recent, _ := lru.New[string, PredictionEvent](recentSize)
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		recent:     recent,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Run pumps registrations and broadcasts until Stop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer; drop the frame rather than block.
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects all clients and ends Run.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish records the event in the replay buffer and broadcasts it.
func (h *Hub) Publish(event PredictionEvent) {
	h.recent.Add(event.ID, event)
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode prediction event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("live feed backlogged, dropping event", zap.String("id", event.ID))
	}
}

// Recent returns the buffered events, oldest first.
func (h *Hub) Recent() []PredictionEvent {
	return h.recent.Values()
}

// ServeWS upgrades the connection and attaches it to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	replay := h.Recent()
	c := &client{conn: conn, send: make(chan []byte, len(replay)+sendBufferSize)}

	// Queue the buffer before live traffic.
	for _, event := range replay {
		if payload, err := json.Marshal(event); err == nil {
			c.send <- payload
		}
	}

	select {
	case h.register <- c:
	case <-h.done:
		// Hub already stopped; don't strand the upgrade goroutine.
		conn.Close()
		return
	}
	go c.writePump(h)
	go c.readPump(h)
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}
