// Package notify fans notifications out to websocket clients, across
// instances when redis is configured.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	KindItineraryCreated = "itinerary_created"
	KindBookingRequested = "booking_requested"
)

// Notification is the payload delivered to a recipient's websocket clients.
type Notification struct {
	Kind        string    `json:"kind"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ItineraryID string    `json:"itinerary_id,omitempty"`
	BookingID   string    `json:"booking_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	log     zerolog.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	RecipientID string
	Send        chan []byte
}

// NewHub subscribes to the shared notification channels when redisClient is
// set. If the subscription cannot be confirmed the hub delivers locally only.
func NewHub(redisClient *redis.Client, log zerolog.Logger) *Hub {
	h := &Hub{
		redis:   redisClient,
		log:     log,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx := context.Background()
		pubsub := redisClient.PSubscribe(ctx, channelPattern)
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Warn().Err(err).Msg("redis subscribe failed, notifications stay local")
			_ = pubsub.Close()
		} else {
			h.pubsub = pubsub
			go h.forward(pubsub.Channel())
		}
	}
	return h
}

func (h *Hub) Register(recipientID string) *Client {
	client := &Client{
		RecipientID: recipientID,
		Send:        make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[recipientID] == nil {
		h.clients[recipientID] = map[*Client]struct{}{}
	}
	h.clients[recipientID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if recipientClients, ok := h.clients[client.RecipientID]; ok {
		delete(recipientClients, client)
		if len(recipientClients) == 0 {
			delete(h.clients, client.RecipientID)
		}
	}
	close(client.Send)
}

// Notify delivers n to its recipient. Delivery is best effort; only an
// unencodable notification is reported.
func (h *Hub) Notify(ctx context.Context, n Notification) error {
	if n.RecipientID == "" {
		return fmt.Errorf("notification %q has no recipient", n.Kind)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	h.Broadcast(ctx, n.RecipientID, payload)
	return nil
}

// Broadcast publishes through redis when subscribed so every instance
// delivers exactly once, and falls back to local delivery otherwise.
func (h *Hub) Broadcast(ctx context.Context, recipientID string, payload []byte) {
	if h.pubsub != nil {
		err := h.redis.Publish(ctx, redisChannel(recipientID), payload).Err()
		if err == nil {
			return
		}
		h.log.Warn().Err(err).Str("recipient_id", recipientID).Msg("redis publish failed, delivering locally")
	}
	h.deliver(recipientID, payload)
}

func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func (h *Hub) deliver(recipientID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[recipientID] {
		select {
		case client.Send <- payload:
		default:
			h.log.Debug().Str("recipient_id", recipientID).Msg("client buffer full, dropping notification")
		}
	}
}

func (h *Hub) forward(messages <-chan *redis.Message) {
	for msg := range messages {
		recipientID := recipientFromChannel(msg.Channel)
		if recipientID == "" {
			continue
		}
		h.deliver(recipientID, []byte(msg.Payload))
	}
}

const (
	channelPrefix  = "notifications:"
	channelSuffix  = ":broadcast"
	channelPattern = channelPrefix + "*" + channelSuffix
)

func redisChannel(recipientID string) string {
	return channelPrefix + recipientID + channelSuffix
}

func recipientFromChannel(ch string) string {
	// notifications:{recipient}:broadcast
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
