// Package statusfeed pushes newly submitted station reports to websocket subscribers.
package statusfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evolve/backend/services/stations-service/internal/metrics"
	"evolve/backend/services/stations-service/internal/models"
)

const (
	EventStationStatus = "station_status"

	broadcastBuffer = 64
	clientBuffer    = 16
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = 30 * time.Second
	maxMessageSize  = 512
)

// Event is the JSON frame sent to subscribers.
type Event struct {
	Type      string        `json:"type"`
	StationID string        `json:"station_id"`
	Status    models.Status `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Hub owns the subscriber set. All mutations happen on the Run goroutine.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub builds a hub. Call Run to start delivering.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Run serves register, unregister and broadcast until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})
	defer func() {
		for c := range clients {
			close(c.send)
		}
		h.setCount(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.setCount(len(clients))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.setCount(len(clients))
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("dropping slow status feed client", zap.String("remote", c.remote))
					delete(clients, c)
					close(c.send)
				}
			}
			h.setCount(len(clients))
		}
	}
}

// Publish queues a report for every subscriber. It never blocks; when the queue is full the
// report is dropped.
func (h *Hub) Publish(status models.StationStatus) {
	payload, err := json.Marshal(Event{
		Type:      EventStationStatus,
		StationID: status.StationID,
		Status:    status.Status,
		UpdatedAt: status.UpdatedAt,
	})
	if err != nil {
		h.logger.Warn("failed to encode status event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("status feed queue full, dropping event", zap.String("station_id", status.StationID))
	}
}

// Clients returns the current subscriber count.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

func (h *Hub) setCount(n int) {
	h.count.Store(int64(n))
	metrics.SetFeedClients(n)
}

// ServeWS upgrades the request and subscribes the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("status feed upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
		remote: r.RemoteAddr,
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
	h.logger.Debug("status feed client connected", zap.String("remote", c.remote))
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
