package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNew_NilClientIsNoop(t *testing.T) {
	store := New(nil)
	if _, ok := store.(NoopStore); !ok {
		t.Fatalf("expected NoopStore, got %T", store)
	}

	ctx := context.Background()
	if err := store.SetJSON(ctx, KeyClassStrength, []int{1}, time.Minute); err != nil {
		t.Errorf("SetJSON: %v", err)
	}
	var out []int
	found, err := store.GetJSON(ctx, KeyClassStrength, &out)
	if err != nil || found {
		t.Errorf("noop store should always miss, got found=%v err=%v", found, err)
	}
}

func TestNewRedisClient_NoAddress(t *testing.T) {
	if client := NewRedisClient(context.Background(), Options{}); client != nil {
		t.Errorf("expected nil client without an address")
	}
}

func TestRedisStore_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := New(client)
	var out map[string]int
	found, err := store.GetJSON(context.Background(), "k", &out)
	if err == nil || found {
		t.Errorf("expected an error from an unreachable server, got found=%v err=%v", found, err)
	}
}
