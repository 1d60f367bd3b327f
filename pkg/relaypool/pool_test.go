package relaypool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newPushRelayServer(t *testing.T, eventFrame string, received chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(eventFrame)); err != nil {
			return
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if received != nil {
				received <- string(data)
			}
		}
	}))
	return server
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func sampleEventFrame(id string) string {
	return `["EVENT","sub1",{"id":"` + id + `","pubkey":"` + strings.Repeat("bb", 32) +
		`","created_at":1700000000,"kind":1,"tags":[],"content":"hi","sig":"` + strings.Repeat("cc", 64) + `"}]`
}

func TestPoolDedupsEventsAcrossRelays(t *testing.T) {
	id := strings.Repeat("aa", 32)
	frame := sampleEventFrame(id)

	server1 := newPushRelayServer(t, frame, nil)
	defer server1.Close()
	server2 := newPushRelayServer(t, frame, nil)
	defer server2.Close()

	pool := New()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.AddRelay(ctx, wsURL(server1.URL)); err != nil {
		t.Fatalf("AddRelay 1: %v", err)
	}
	if err := pool.AddRelay(ctx, wsURL(server2.URL)); err != nil {
		t.Fatalf("AddRelay 2: %v", err)
	}

	var got []string
	timeout := time.After(2 * time.Second)
collect:
	for {
		select {
		case msg := <-pool.AllMessages():
			got = append(got, msg.URL)
		case <-timeout:
			break collect
		}
	}

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 deduped event across both relays, got %d: %v", len(got), got)
	}
}

func TestPoolAddRelayIsIdempotent(t *testing.T) {
	server := newPushRelayServer(t, sampleEventFrame(strings.Repeat("11", 32)), nil)
	defer server.Close()

	pool := New()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := wsURL(server.URL)
	if err := pool.AddRelay(ctx, url); err != nil {
		t.Fatalf("first AddRelay: %v", err)
	}
	if err := pool.AddRelay(ctx, url); err != nil {
		t.Fatalf("second AddRelay: %v", err)
	}
}

func TestPoolBroadcastReachesAllRelays(t *testing.T) {
	received1 := make(chan string, 4)
	received2 := make(chan string, 4)
	server1 := newPushRelayServer(t, "", received1)
	defer server1.Close()
	server2 := newPushRelayServer(t, "", received2)
	defer server2.Close()

	pool := New()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.AddRelay(ctx, wsURL(server1.URL)); err != nil {
		t.Fatal(err)
	}
	if err := pool.AddRelay(ctx, wsURL(server2.URL)); err != nil {
		t.Fatal(err)
	}

	pool.Subscribe("sub1")

	for i, ch := range []chan string{received1, received2} {
		select {
		case frame := <-ch:
			if !strings.Contains(frame, "REQ") || !strings.Contains(frame, "sub1") {
				t.Fatalf("relay %d received unexpected frame: %s", i, frame)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("relay %d never received the broadcast REQ", i)
		}
	}
}

func TestPoolRemoveRelay(t *testing.T) {
	server := newPushRelayServer(t, "", nil)
	defer server.Close()

	pool := New()
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := wsURL(server.URL)
	if err := pool.AddRelay(ctx, url); err != nil {
		t.Fatal(err)
	}
	if err := pool.RemoveRelay(url); err != nil {
		t.Fatalf("RemoveRelay: %v", err)
	}
	if err := pool.RemoveRelay(url); err != nil {
		t.Fatalf("RemoveRelay on an already-removed url should be a no-op: %v", err)
	}
}
