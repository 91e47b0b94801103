package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForSubscribers blocks until the hub has n subscribers on topic.
func waitForSubscribers(t *testing.T, h *Hub, topic string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		got := len(h.subscribers[topic])
		h.mu.RUnlock()
		if got == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d subscribers on %q", n, topic)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return env
}

// TestHubPublish tests the subscribe command and topic routing
func TestHubPublish(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	stocks := dialHub(t, server)
	exchanges := dialHub(t, server)

	if err := stocks.WriteJSON(clientCommand{Action: "subscribe", Topics: []string{TopicStocks}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if err := exchanges.WriteJSON(clientCommand{Action: "subscribe", Topics: []string{TopicExchanges}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	waitForSubscribers(t, hub, TopicStocks, 1)
	waitForSubscribers(t, hub, TopicExchanges, 1)

	hub.Publish(TopicStocks, map[string]string{"name": "Samsung"})

	env := readEnvelope(t, stocks)
	if env.Topic != TopicStocks {
		t.Errorf("Expected topic %q, got %q", TopicStocks, env.Topic)
	}
	data, ok := env.Data.(map[string]interface{})
	if !ok || data["name"] != "Samsung" {
		t.Errorf("Unexpected payload: %v", env.Data)
	}

	// The exchanges subscriber must not see the stocks event
	exchanges.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := exchanges.ReadMessage(); err == nil {
		t.Error("Expected no message on the exchanges topic")
	}
}

// TestHubUnsubscribe tests that an unsubscribed client stops receiving
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	if err := conn.WriteJSON(clientCommand{Action: "subscribe", Topics: []string{TopicStocks}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	waitForSubscribers(t, hub, TopicStocks, 1)

	if err := conn.WriteJSON(clientCommand{Action: "unsubscribe", Topics: []string{TopicStocks}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	waitForSubscribers(t, hub, TopicStocks, 0)

	hub.Publish(TopicStocks, "ignored")
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected no message after unsubscribe")
	}
}

// TestHubDisconnect tests that a closed client is dropped from the registry
func TestHubDisconnect(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	if err := conn.WriteJSON(clientCommand{Action: "subscribe", Topics: []string{TopicStocks}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	waitForSubscribers(t, hub, TopicStocks, 1)

	conn.Close()
	waitForSubscribers(t, hub, TopicStocks, 0)

	// Publishing into an empty topic must not panic
	hub.Publish(TopicStocks, "nobody listening")
}

// TestHubPublishDuringDisconnect tests that broadcasting while clients come
// and go never escapes the hub; a send racing a client teardown used to
// panic inside the publishing goroutine
func TestHubPublishDuringDisconnect(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					hub.Publish(TopicStocks, "tick")
				}
			}
		}()
	}

	for round := 0; round < 60; round++ {
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Dial failed: %v", err)
		}
		if err := conn.WriteJSON(clientCommand{Action: "subscribe", Topics: []string{TopicStocks}}); err != nil {
			t.Fatalf("WriteJSON failed: %v", err)
		}
		conn.Close()
	}

	close(done)
	wg.Wait()
	waitForSubscribers(t, hub, TopicStocks, 0)
}

type recordingSink struct {
	topics   []string
	payloads []interface{}
}

func (r *recordingSink) Publish(topic string, payload interface{}) {
	r.topics = append(r.topics, topic)
	r.payloads = append(r.payloads, payload)
}

// TestFanout tests that every sink in the fanout sees every event
func TestFanout(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	f := Fanout{a, b, Discard{}}

	f.Publish(TopicStocksDeleted, int64(7))

	for i, r := range []*recordingSink{a, b} {
		if len(r.topics) != 1 || r.topics[0] != TopicStocksDeleted {
			t.Errorf("Sink %d: expected one event on %q, got %v", i, TopicStocksDeleted, r.topics)
		}
		if len(r.payloads) != 1 || r.payloads[0] != int64(7) {
			t.Errorf("Sink %d: unexpected payload %v", i, r.payloads)
		}
	}
}
