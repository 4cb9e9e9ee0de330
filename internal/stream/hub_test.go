package stream

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	viewer := hub.Register(LiveFeed)
	defer hub.Unregister(viewer)

	hub.Broadcast(LiveFeed, []byte("hello"))

	select {
	case msg := <-viewer.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "hike:abc:live" {
		t.Fatalf("unexpected channel: %q", ch)
	}
	if feedFromChannel(ch) != "abc" {
		t.Fatalf("unexpected feed")
	}
	if feedFromChannel("bad") != "" {
		t.Fatalf("expected empty feed")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	viewer := hub.Register(LiveFeed)
	hub.Unregister(viewer)
	_, ok := <-viewer.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisRoundTrip(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	hub := NewHub(client)
	viewer := hub.Register(LiveFeed)
	defer hub.Unregister(viewer)

	// let the pattern subscription settle before publishing
	time.Sleep(100 * time.Millisecond)
	hub.Broadcast(LiveFeed, []byte("ping"))

	select {
	case msg := <-viewer.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	viewer := hub.Register(LiveFeed)
	defer hub.Unregister(viewer)

	hub.Broadcast(LiveFeed, []byte("ping"))
}
