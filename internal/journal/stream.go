package journal

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MetricEvent is the JSON payload broadcast to every connected stream
// client: one batch of metrics observed at a single event time.
type MetricEvent struct {
	Run     string             `json:"run"`
	Time    time.Time          `json:"time"`
	Metrics map[string]float64 `json:"metrics"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// Hub fans MetricEvents out to every connected websocket client. Its
// register/unregister/broadcast select loop and drop-slow-clients
// policy is the teacher's internal/api.Hub verbatim, generalized from
// DashboardEvent to MetricEvent.
type Hub struct {
	clients    map[*hubClient]bool
	register   chan *hubClient
	unregister chan *hubClient
	broadcast  chan []byte
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a Hub. Call Run in its own goroutine before serving any
// websocket connections.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*hubClient]bool),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		broadcast:  make(chan []byte, 256),
		logger:     logger.With("component", "journal-ws-hub"),
	}
}

// Run services register/unregister/broadcast until ctx-independent
// shutdown; callers stop it by simply no longer feeding it (the process
// exiting closes the listener, which drops every client's readPump).
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("client connected", "count", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("client disconnected", "count", len(h.clients))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends evt to every connected client, dropping it if the
// broadcast buffer is saturated rather than blocking the caller (the
// caller here is the synchronous run loop, which must never block on
// I/O per spec.md §5).
func (h *Hub) Broadcast(evt MetricEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to marshal metric event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping metric event")
	}
}

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient registers conn with hub and starts its read/write pumps.
// Used by internal/api's /ws handler after upgrading an HTTP connection.
func NewClient(hub *Hub, conn *websocket.Conn) {
	client := &hubClient{hub: hub, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client
	go client.writePump()
	go client.readPump()
}

func (c *hubClient) writePump() {
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

func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket error", "error", err)
			}
			break
		}
		// the metric stream is read-only; any client message is ignored
	}
}

// StreamLogger broadcasts every Log call over a Hub while delegating
// storage and read-back to an embedded MemoryLogger, the same
// decorator shape ConsoleLogger/InfoLogger use.
type StreamLogger struct {
	*MemoryLogger
	hub *Hub
}

// NewStreamLogger builds a StreamLogger broadcasting on hub. Run hub.Run
// in its own goroutine before events start flowing.
func NewStreamLogger(hub *Hub) *StreamLogger {
	return &StreamLogger{MemoryLogger: NewMemoryLogger(), hub: hub}
}

func (l *StreamLogger) Log(metrics map[string]float64, at time.Time, run string) {
	l.MemoryLogger.Log(metrics, at, run)
	l.hub.Broadcast(MetricEvent{Run: run, Time: at, Metrics: metrics})
}
