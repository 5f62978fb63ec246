// Package cache implements the optional request-level result cache backed
// by the options.cache_result flag (§6). A cache hit skips the pipeline
// entirely and returns the stored Response, so it lives outside the nine
// numbered layers rather than inside pipeline.Process.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached screening result stays valid before the
// narrative should be re-screened against a (possibly updated) watchlist.
const DefaultTTL = time.Hour

// ResultCache stores gzip-compressed JSON payloads in Redis, keyed by a
// hash of the request that produced them.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing Redis client. Pass a *redis.Client built against a
// real server in production, or one pointed at a miniredis instance in
// tests.
func New(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Key derives the cache key for a request from its text, language, and
// relevant options — anything that could change the Response.
func Key(text string, language string, generateVariants, generateEmbeddings bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00%t", text, language, generateVariants, generateEmbeddings)
	return "screen:result:" + hex.EncodeToString(h.Sum(nil))
}

// Get looks up key and unmarshals the stored payload into dest. ok is false
// on a cache miss or any decode error — callers should treat either as
// "re-run the pipeline," not a hard failure.
func (c *ResultCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	decompressed, err := gunzip(raw)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(decompressed, dest); err != nil {
		return false
	}
	return true
}

// Set stores value under key with the cache's configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshaling value: %w", err)
	}
	compressed, err := gzipBytes(raw)
	if err != nil {
		return fmt.Errorf("cache: compressing value: %w", err)
	}
	return c.client.Set(ctx, key, compressed, c.ttl).Err()
}

func gzipBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(compressed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
