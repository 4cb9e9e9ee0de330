package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// LiveFeed is the feed the tracker publishes every snapshot to.
const LiveFeed = "live"

// Hub fans snapshot payloads out to websocket viewers. With a Redis client
// attached, payloads travel through pub/sub so viewers connected to other
// instances see the same feed.
type Hub struct {
	redis   *redis.Client
	viewers map[string]map[*Viewer]struct{}
	mu      sync.RWMutex
}

type Viewer struct {
	Feed string
	Send chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		viewers: map[string]map[*Viewer]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(feed string) *Viewer {
	viewer := &Viewer{
		Feed: feed,
		Send: make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.viewers[feed] == nil {
		h.viewers[feed] = map[*Viewer]struct{}{}
	}
	h.viewers[feed][viewer] = struct{}{}
	return viewer
}

func (h *Hub) Unregister(viewer *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if feedViewers, ok := h.viewers[viewer.Feed]; ok {
		delete(feedViewers, viewer)
		if len(feedViewers) == 0 {
			delete(h.viewers, viewer.Feed)
		}
	}
	close(viewer.Send)
}

// Broadcast publishes a payload to every viewer of a feed. When Redis is
// configured delivery goes through pub/sub so all instances fan out once.
func (h *Hub) Broadcast(feed string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(feed), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
		return
	}
	h.deliver(feed, payload)
}

func (h *Hub) deliver(feed string, payload []byte) {
	h.mu.RLock()
	viewers := h.viewers[feed]
	h.mu.RUnlock()

	for viewer := range viewers {
		select {
		case viewer.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "hike:*:live")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(feedFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(feed string) string {
	return "hike:" + feed + ":live"
}

func feedFromChannel(ch string) string {
	// hike:{feed}:live
	const prefix = "hike:"
	const suffix = ":live"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
