package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"gold_price/internal/domain"
	"gold_price/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 8
)

// StreamHub pushes every refreshed price to connected WebSocket clients
type StreamHub struct {
	mu       sync.RWMutex
	clients  map[*streamClient]struct{}
	closed   bool
	upgrader websocket.Upgrader
	metrics  *infra.Metrics
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewStreamHub creates a hub accepting browser origins from allowedOrigins ("*" for any)
func NewStreamHub(allowedOrigins []string, metrics *infra.Metrics) *StreamHub {
	h := &StreamHub{
		clients: make(map[*streamClient]struct{}),
		metrics: metrics,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Broadcast sends rec to every client. Clients whose buffer is full are dropped.
func (h *StreamHub) Broadcast(rec domain.PriceRecord) {
	msg, err := json.Marshal(streamMessage{Type: "price", Data: newPriceData(rec)})
	if err != nil {
		slog.Error("stream marshal failed", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	var slow []*streamClient
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow stream client", slog.String("remote", c.conn.RemoteAddr().String()))
		h.remove(c)
	}
}

// ServeWS upgrades the request and registers the client. If current reports a
// record, it is queued first. Registration and that read happen under the hub
// lock, so a refresh racing with the connect is either in the first message or
// broadcast after it.
func (h *StreamHub) ServeWS(w http.ResponseWriter, r *http.Request, current func() (domain.PriceRecord, bool)) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if current != nil {
		if rec, ok := current(); ok {
			if msg, err := json.Marshal(streamMessage{Type: "price", Data: newPriceData(rec)}); err == nil {
				c.send <- msg
			}
		}
	}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncrementStreamClients()
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Clients returns the number of connected clients
func (h *StreamHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *StreamHub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*streamClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (h *StreamHub) remove(c *streamClient) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.send)
		if h.metrics != nil {
			h.metrics.DecrementStreamClients()
		}
	})
}

func (h *StreamHub) writeLoop(c *streamClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop discards client messages and detects disconnects
func (h *StreamHub) readLoop(c *streamClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
