package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/rook-computer/flowerfield/internal/metrics"
	"github.com/rook-computer/flowerfield/internal/state"
)

const wsWriteTimeout = 5 * time.Second

// Hub pushes one JSON message per published frame to every connected
// websocket client. Slow clients only ever see the newest frame.
type Hub struct {
	Logger  Logger
	Metrics *metrics.Registry
	// Current returns the latest frame, sent to clients when they connect.
	Current func() (state.FrameInfo, bool)
	// OriginPatterns are passed to websocket.Accept. Empty means same origin.
	OriginPatterns []string

	mu      sync.Mutex
	clients map[chan frameResponse]struct{}
}

func NewHub() *Hub {
	return &Hub{Logger: noopLogger{}, clients: make(map[chan frameResponse]struct{})}
}

// Publish fans info out to all clients without blocking.
func (h *Hub) Publish(info state.FrameInfo) {
	msg := newFrameResponse(info)
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case <-ch:
		default:
		}
		ch <- msg
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) subscribe() chan frameResponse {
	ch := make(chan frameResponse, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	if h.Metrics != nil {
		h.Metrics.LiveClients.Inc()
	}
	return ch
}

func (h *Hub) unsubscribe(ch chan frameResponse) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	if h.Metrics != nil {
		h.Metrics.LiveClients.Dec()
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.OriginPatterns})
	if err != nil {
		h.Logger.Errorf("ws", "accept: %v", err)
		return
	}
	defer c.CloseNow()

	// Clients never send anything; CloseRead handles pings and close frames.
	ctx := c.CloseRead(r.Context())

	ch := h.subscribe()
	defer h.unsubscribe(ch)
	h.Logger.Infof("ws", "client connected from %s", r.RemoteAddr)

	if h.Current != nil {
		if info, ok := h.Current(); ok {
			if err := h.write(ctx, c, newFrameResponse(info)); err != nil {
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			h.Logger.Infof("ws", "client %s gone", r.RemoteAddr)
			return
		case msg := <-ch:
			if err := h.write(ctx, c, msg); err != nil {
				h.Logger.Infof("ws", "write to %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, c *websocket.Conn, msg frameResponse) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, msg)
}
