package cache

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"invhub-rest-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

var deleteIfUnchangedScript = redis.NewScript(`
	if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
		redis.call("HDEL", KEYS[1], ARGV[1])
		redis.call("SREM", KEYS[2], ARGV[1])
		return 1
	else
		return 0
	end
`)

// RedisCommentBuffer buffers posted comments in Redis and batch-flushes them
// to SQLite. It also publishes live-update events on a per-inventory channel
// so connected clients see new items and comments without polling; the
// delivery transport on the subscriber side is out of scope here.
type RedisCommentBuffer struct {
	client      *redis.Client
	flushFunc   FlushFunc
	flushTicker *time.Ticker
	stopFlush   chan struct{}
	stopOnce    sync.Once
	keyPrefix   string
}

// RedisBufferConfig holds configuration for the Redis buffer.
type RedisBufferConfig struct {
	Addr          string        // Redis address (e.g., "127.0.0.1:6379")
	Password      string        // Redis password (empty if none)
	DB            int           // Redis database number (use different DB per app)
	FlushInterval time.Duration // How often to flush to the database
	KeyPrefix     string        // Optional custom key prefix
}

// NewRedisCommentBuffer creates a Redis-backed comment buffer.
func NewRedisCommentBuffer(cfg RedisBufferConfig, flushFunc FlushFunc) (*RedisCommentBuffer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB, // Use dedicated DB to avoid conflicts with other apps
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "invhub:comments"
	}

	b := &RedisCommentBuffer{
		client:      client,
		flushFunc:   flushFunc,
		flushTicker: time.NewTicker(cfg.FlushInterval),
		stopFlush:   make(chan struct{}),
		keyPrefix:   keyPrefix,
	}

	// Start background flush goroutine
	go b.backgroundFlush()

	log.Printf("[RedisCommentBuffer] Connected to Redis DB:%d, prefix:%s, flush interval: %v",
		cfg.DB, keyPrefix, cfg.FlushInterval)
	return b, nil
}

// bufferKey returns the namespaced buffer key
func (b *RedisCommentBuffer) bufferKey() string {
	return b.keyPrefix + ":buffer"
}

// pendingKey returns the namespaced pending set key
func (b *RedisCommentBuffer) pendingKey() string {
	return b.keyPrefix + ":pending"
}

// eventChannel returns the pub/sub channel for one inventory.
func (b *RedisCommentBuffer) eventChannel(inventoryID string) string {
	return b.keyPrefix + ":events:" + inventoryID
}

// Add buffers a posted comment in Redis. No SQLite hit on the request path.
func (b *RedisCommentBuffer) Add(ctx context.Context, c *domain.Comment) error {
	jsonData, err := json.Marshal(c)
	if err != nil {
		return err
	}

	pipe := b.client.Pipeline()

	// Store the data with comment ID as field
	pipe.HSet(ctx, b.bufferKey(), c.ID, jsonData)

	// Add to pending set for tracking
	pipe.SAdd(ctx, b.pendingKey(), c.ID)

	_, err = pipe.Exec(ctx)
	return err
}

// ListPending returns buffered comments for one inventory, oldest first.
func (b *RedisCommentBuffer) ListPending(ctx context.Context, inventoryID string) ([]*domain.Comment, error) {
	all, err := b.client.HGetAll(ctx, b.bufferKey()).Result()
	if err != nil {
		return nil, err
	}

	var out []*domain.Comment
	for _, raw := range all {
		var c domain.Comment
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		if c.InventoryID == inventoryID {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of pending comments.
func (b *RedisCommentBuffer) Count(ctx context.Context) (int64, error) {
	return b.client.SCard(ctx, b.pendingKey()).Result()
}

// PublishEvent fans a live-update event out to subscribers of the
// inventory's channel. Best effort: a publish failure never fails the
// request that triggered it.
func (b *RedisCommentBuffer) PublishEvent(ctx context.Context, inventoryID, eventType string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type":         eventType,
		"inventory_id": inventoryID,
		"payload":      payload,
		"at":           time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, b.eventChannel(inventoryID), msg).Err(); err != nil {
		log.Printf("[RedisCommentBuffer] Publish error: %v", err)
	}
}

// Flush writes all buffered comments to the database.
func (b *RedisCommentBuffer) Flush(ctx context.Context) error {
	// Get all pending comment IDs
	commentIDs, err := b.client.SMembers(ctx, b.pendingKey()).Result()
	if err != nil {
		return err
	}

	if len(commentIDs) == 0 {
		return nil
	}

	log.Printf("[RedisCommentBuffer] Flushing %d comments to database", len(commentIDs))

	comments := make([]*domain.Comment, 0, len(commentIDs))
	// Original JSON per comment for safe deletion (optimistic locking)
	originalData := make(map[string]string)

	for _, id := range commentIDs {
		data, err := b.client.HGet(ctx, b.bufferKey(), id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Printf("[RedisCommentBuffer] Error getting data for %s: %v", id, err)
			continue
		}

		originalData[id] = string(data)

		var c domain.Comment
		if err := json.Unmarshal(data, &c); err != nil {
			log.Printf("[RedisCommentBuffer] Error unmarshaling data for %s: %v", id, err)
			continue
		}
		comments = append(comments, &c)
	}

	if len(comments) == 0 {
		return nil
	}

	// Flush to database
	if err := b.flushFunc(ctx, comments); err != nil {
		log.Printf("[RedisCommentBuffer] Flush error: %v", err)
		return err
	}

	// Clear flushed comments from Redis using safe atomic script
	pipe := b.client.Pipeline()
	for id, rawJSON := range originalData {
		// Only delete if the data in Redis hasn't changed since we read it
		deleteIfUnchangedScript.Run(ctx, pipe, []string{b.bufferKey(), b.pendingKey()}, id, rawJSON)
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		log.Printf("[RedisCommentBuffer] Error clearing Redis: %v", err)
	}

	log.Printf("[RedisCommentBuffer] Successfully flushed %d comments", len(comments))
	return nil
}

// backgroundFlush runs the periodic flush to database.
func (b *RedisCommentBuffer) backgroundFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			// Short timeout to fail fast rather than block for 60s
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := b.Flush(ctx); err != nil {
				log.Printf("[RedisCommentBuffer] Background flush error: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			// Final flush on shutdown with longer timeout
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			b.Flush(ctx)
			cancel()
			return
		}
	}
}

// Close stops the buffer and performs a final flush.
func (b *RedisCommentBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		close(b.stopFlush)
	})
	return b.client.Close()
}
