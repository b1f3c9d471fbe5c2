package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, "test:"), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.SetJSON(ctx, "snap", payload{Name: "riyadh", Count: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("test:snap") {
		t.Fatal("expected prefixed key in redis")
	}

	var got payload
	found, err := c.GetJSON(ctx, "snap", &got)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if got.Name != "riyadh" || got.Count != 3 {
		t.Fatalf("unexpected value: %#v", got)
	}
}

func TestRedisCache_MissAndDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got payload
	found, err := c.GetJSON(ctx, "absent", &got)
	if err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	_ = c.SetJSON(ctx, "snap", payload{Name: "x"}, time.Minute)
	if err := c.Delete(ctx, "snap"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	found, _ = c.GetJSON(ctx, "snap", &got)
	if found {
		t.Fatal("expected miss after delete")
	}
}

func TestRedisCache_TTLExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_ = c.SetJSON(ctx, "snap", payload{Name: "x"}, time.Second)
	mr.FastForward(2 * time.Second)

	var got payload
	found, _ := c.GetJSON(ctx, "snap", &got)
	if found {
		t.Fatal("expected expiry")
	}
}

func TestRedisCache_CounterStartsAtZeroAndIncrements(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	n, err := c.Counter(ctx, "gen")
	if err != nil || n != 0 {
		t.Fatalf("expected unset counter to read 0, got %d err=%v", n, err)
	}
	if n, err = c.Incr(ctx, "gen"); err != nil || n != 1 {
		t.Fatalf("expected incr to return 1, got %d err=%v", n, err)
	}
	if n, _ = c.Counter(ctx, "gen"); n != 1 {
		t.Fatalf("expected counter 1, got %d", n)
	}
	if got, _ := mr.Get("test:gen"); got != "1" {
		t.Fatalf("expected prefixed counter key, got %q", got)
	}
}
