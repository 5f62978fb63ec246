package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubResponse struct {
	Risk  string
	Score float64
}

func newTestCache(t *testing.T) *ResultCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return New(client, time.Minute)
}

func TestResultCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := Key("Иванов Иван Иванович", "ru", false, false)

	if c.Get(ctx, key, &stubResponse{}) {
		t.Fatal("expected cache miss before Set")
	}

	want := stubResponse{Risk: "HIGH", Score: 0.9}
	if err := c.Set(ctx, key, want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got stubResponse
	if !c.Get(ctx, key, &got) {
		t.Fatal("expected cache hit after Set")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestResultCacheKeyIsStableAndDistinguishesOptions(t *testing.T) {
	a := Key("same text", "ru", false, false)
	b := Key("same text", "ru", false, false)
	if a != b {
		t.Error("expected identical inputs to produce identical keys")
	}

	c := Key("same text", "ru", true, false)
	if a == c {
		t.Error("expected generate_variants to change the cache key")
	}
}
