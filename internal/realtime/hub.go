// Package realtime pushes chat session events to browser tabs over
// websockets. Each connection subscribes to exactly one topic, the client
// session id, when it is opened.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be below pongWait
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Envelope is the frame written to subscribers.
type Envelope struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Ref     string `json:"ref,omitempty"`
}

type incoming struct {
	Event string `json:"event"`
	Ref   string `json:"ref"`
}

type client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	topic string
}

type broadcast struct {
	topic string
	data  []byte
}

// Hub fans events out to the connections of each topic. Run must be
// running for registration and delivery to make progress.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan broadcast
	done       chan struct{}
	stopOnce   sync.Once

	mu     sync.RWMutex
	topics map[string]map[*client]bool

	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHub returns a hub. allowedOrigins restricts browser origins; an empty
// list accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan broadcast, 256),
		done:       make(chan struct{}),
		topics:     map[string]map[*client]bool{},
		log:        log.With().Str("component", "realtime").Logger(),
	}
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || origin == "" || allowed[origin]
		},
	}
	return h
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.topics[c.topic] == nil {
				h.topics[c.topic] = map[*client]bool{}
			}
			h.topics[c.topic][c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.remove(c)
		case b := <-h.broadcast:
			h.mu.RLock()
			var slow []*client
			for c := range h.topics[b.topic] {
				select {
				case c.send <- b.data:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.log.Warn().Str("topic", c.topic).Msg("dropping slow subscriber")
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.topics[c.topic]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.topics, c.topic)
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for topic, clients := range h.topics {
			for c := range clients {
				close(c.send)
			}
			delete(h.topics, topic)
		}
		h.mu.Unlock()
	})
}

// Subscribers returns the number of connections on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Broadcast queues event for every connection of topic. It never blocks
// after the hub stopped.
func (h *Hub) Broadcast(topic, event string, payload any) {
	data, err := json.Marshal(Envelope{Topic: topic, Event: event, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode event")
		return
	}
	select {
	case h.broadcast <- broadcast{topic: topic, data: data}:
	case <-h.done:
	}
}

// ServeWS upgrades the request and subscribes the connection to topic.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), topic: topic}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Str("topic", c.topic).Msg("websocket closed")
			}
			return
		}
		var msg incoming
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Event == "heartbeat" {
			c.reply(Envelope{Topic: c.topic, Event: "heartbeat", Payload: map[string]string{"status": "ok"}, Ref: msg.Ref})
		}
	}
}

// reply queues a direct answer without blocking the read loop.
func (c *client) reply(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.topics[c.topic][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
