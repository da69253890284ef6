package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrHubClosed is returned by ServeWS after Close.
var ErrHubClosed = errors.New("dispatch: hub closed")

// HubConfig configures a Hub.
type HubConfig struct {
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PongTimeout is how long a client may stay silent before it is dropped.
	PongTimeout time.Duration

	// PingInterval must be shorter than PongTimeout.
	PingInterval time.Duration

	// SendBuffer is the number of envelopes queued per client. A client whose
	// queue is full is disconnected.
	SendBuffer int

	// CheckOrigin is passed to the websocket upgrader.
	CheckOrigin func(r *http.Request) bool

	// OnConnect and OnDisconnect are called once per client.
	OnConnect    func(group string)
	OnDisconnect func(group string)

	Logger *slog.Logger
}

// DefaultHubConfig returns the defaults used by NewHub.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout: 10 * time.Second,
		PongTimeout:  60 * time.Second,
		PingInterval: 50 * time.Second,
		SendBuffer:   64,
		Logger:       slog.Default(),
	}
}

// Hub streams envelopes to WebSocket clients.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	conn  *websocket.Conn
	group string
	send  chan []byte
	done  chan struct{}
	once  sync.Once
}

func (c *wsClient) stop() {
	c.once.Do(func() { close(c.done) })
}

// NewHub creates a hub with DefaultHubConfig adjusted by the given options.
func NewHub(opts ...func(*HubConfig)) *Hub {
	cfg := DefaultHubConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeWS upgrades the request and streams envelopes of group to the client,
// or of every group when group is "". It returns once the connection is
// registered; reading and writing continue in the background.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, group string) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return ErrHubClosed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &wsClient{
		conn:  conn,
		group: group,
		send:  make(chan []byte, h.config.SendBuffer),
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.config.OnConnect != nil {
		h.config.OnConnect(group)
	}

	h.config.Logger.Debug("dispatch: websocket client connected", "group", group, "remote", r.RemoteAddr)
	go h.writeLoop(c)
	go h.readLoop(c)
	return nil
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *Hub) readLoop(c *wsClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.config.Logger.Warn("dispatch: websocket read error", "group", c.group, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
	if ok && h.config.OnDisconnect != nil {
		h.config.OnDisconnect(c.group)
	}
}

// Dispatch implements Dispatcher. Slow clients whose buffer is full are
// disconnected instead of blocking the caller.
func (h *Hub) Dispatch(_ context.Context, env Envelope) error {
	msg, err := env.Encode()
	if err != nil {
		return err
	}

	h.mu.Lock()
	var slow []*wsClient
	for c := range h.clients {
		if c.group != "" && c.group != env.Group {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.config.Logger.Warn("dispatch: dropping slow websocket client", "group", c.group)
		h.remove(c)
	}
	return nil
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.stop()
		if h.config.OnDisconnect != nil {
			h.config.OnDisconnect(c.group)
		}
	}
	return nil
}
