package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Envelope is the wire format pushed to websocket clients.
type Envelope struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

// clientCommand is what clients send upstream.
type clientCommand struct {
	Action string   `json:"action"` // subscribe | unsubscribe
	Topics []string `json:"topics"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API already fronts browser clients through CORS; the socket
	// accepts any origin like the rest of the read surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub is an in-process topic broadcaster over websockets. It implements
// Sink for the API handlers and ServeHTTP for the /ws endpoint.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*client]bool
	clients     map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*client]bool),
		clients:     make(map[*client]bool),
	}
}

// Publish sends the payload to every client subscribed to topic. Slow
// clients get dropped rather than holding the broadcast up. Sends happen
// under the read lock and drop closes send channels under the write lock,
// so a publish can never hit a closed channel.
func (h *Hub) Publish(topic string, payload interface{}) {
	raw, err := json.Marshal(Envelope{Topic: topic, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to encode notification")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.subscribers[topic] {
		select {
		case c.send <- raw:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("topic", topic).Msg("dropping slow websocket client")
		h.drop(c)
	}
}

// ServeHTTP upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) subscribe(c *client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		if h.subscribers[topic] == nil {
			h.subscribers[topic] = make(map[*client]bool)
		}
		h.subscribers[topic][c] = true
	}
}

func (h *Hub) unsubscribe(c *client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		delete(h.subscribers[topic], c)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for _, set := range h.subscribers {
		delete(set, c)
	}
	// Closing under the write lock keeps the close ordered after every
	// in-flight send in Publish.
	close(c.send)
	h.mu.Unlock()

	c.conn.Close()
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Debug().Err(err).Msg("ignoring malformed websocket command")
			continue
		}
		switch cmd.Action {
		case "subscribe":
			h.subscribe(c, cmd.Topics)
		case "unsubscribe":
			h.unsubscribe(c, cmd.Topics)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
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
