package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/connectly/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// broadcastRoom is the pseudo-room addressing every connected client.
const broadcastRoom = "all"

// channelPrefix namespaces the Redis channels carrying realtime events.
const channelPrefix = "events:"

// Envelope is the wire format pushed to clients.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub tracks connected clients grouped into rooms keyed by account id and
// fans events out to them. With a Redis client attached, events travel
// through pub/sub channels so every instance of the service delivers them;
// without one they are delivered in-process. Delivery is best-effort: a
// slow client's backlog is dropped, and nothing is persisted.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	rdb   *redis.Client // nil for single-instance, in-process delivery
}

// NewHub creates a hub; rdb may be nil.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		rdb:   rdb,
	}
}

// Run consumes the Redis event channels until the context is cancelled.
// Without Redis it blocks until cancellation; registration and delivery
// are lock-based and need no pump.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	sub := h.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			room := strings.TrimPrefix(msg.Channel, channelPrefix)
			h.deliver(room, []byte(msg.Payload))
		}
	}
}

// Register joins a client to its account's room
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[c.AccountID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[c.AccountID] = room
	}
	room[c] = struct{}{}
	logger.L().Debug().Str("client", c.ID).Str("room", c.AccountID).Msg("realtime client joined")
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.AccountID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.AccountID)
	}
	close(c.Send)
	logger.L().Debug().Str("client", c.ID).Str("room", c.AccountID).Msg("realtime client left")
}

// PublishTo sends an event to the room keyed by account id
func (h *Hub) PublishTo(accountID, event string, payload any) {
	h.publish(accountID, event, payload)
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event string, payload any) {
	h.publish(broadcastRoom, event, payload)
}

func (h *Hub) publish(room, event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		logger.L().Warn().Err(err).Str("event", event).Msg("realtime event marshal failed")
		return
	}

	if h.rdb != nil {
		// The subscriber side delivers to local clients.
		if err := h.rdb.Publish(context.Background(), channelPrefix+room, data).Err(); err != nil {
			logger.L().Warn().Err(err).Str("event", event).Msg("realtime publish failed")
		}
		return
	}
	h.deliver(room, data)
}

func (h *Hub) deliver(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room == broadcastRoom {
		for _, clients := range h.rooms {
			for c := range clients {
				h.send(c, data)
			}
		}
		return
	}

	for c := range h.rooms[room] {
		h.send(c, data)
	}
}

// send never blocks; a client that cannot keep up just misses the event.
func (h *Hub) send(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}
