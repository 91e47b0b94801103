package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// TestRedisSink tests channel naming and payload encoding
func TestRedisSink(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sub := client.Subscribe(ctx, "stockmanager."+TopicStocks)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sink := NewRedisSink(client, "stockmanager.")
	sink.Publish(TopicStocks, map[string]string{"name": "Samsung"})

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	if err != nil {
		t.Fatalf("ReceiveMessage failed: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if env.Topic != TopicStocks {
		t.Errorf("Expected topic %q, got %q", TopicStocks, env.Topic)
	}
	data, ok := env.Data.(map[string]interface{})
	if !ok || data["name"] != "Samsung" {
		t.Errorf("Unexpected payload: %v", env.Data)
	}
}

// TestRedisSinkDown tests that a dead server never fails the mutation path
func TestRedisSinkDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	sink := NewRedisSink(client, "stockmanager.")
	// Must log and drop, not panic or block
	sink.Publish(TopicExchanges, "payload")
}
