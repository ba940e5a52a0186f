package cache

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"invhub-rest-api/internal/domain"
)

// FlushFunc is called to persist buffered comments to the database.
type FlushFunc func(ctx context.Context, comments []*domain.Comment) error

// CommentBuffer holds posted comments until the periodic flush writes them
// to the database. In-memory fallback for when Redis is unavailable; the
// Redis variant survives restarts and is preferred in production.
type CommentBuffer struct {
	mu          sync.RWMutex
	pending     map[string]*domain.Comment // key: comment ID
	flushFunc   FlushFunc
	flushTicker *time.Ticker
	stopFlush   chan struct{}
	stopOnce    sync.Once
}

// NewCommentBuffer creates a new write-behind comment buffer.
func NewCommentBuffer(flushInterval time.Duration, flushFunc FlushFunc) *CommentBuffer {
	b := &CommentBuffer{
		pending:     make(map[string]*domain.Comment),
		flushFunc:   flushFunc,
		flushTicker: time.NewTicker(flushInterval),
		stopFlush:   make(chan struct{}),
	}

	// Start background flush goroutine
	go b.backgroundFlush()

	log.Printf("[CommentBuffer] Started with %v flush interval", flushInterval)
	return b
}

// Add buffers a posted comment. No database hit on the request path.
func (b *CommentBuffer) Add(_ context.Context, c *domain.Comment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[c.ID] = c
	return nil
}

// ListPending returns buffered comments for one inventory, oldest first.
// Read paths merge this with the persisted rows so a just-posted comment is
// visible before the flush.
func (b *CommentBuffer) ListPending(_ context.Context, inventoryID string) ([]*domain.Comment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*domain.Comment
	for _, c := range b.pending {
		if c.InventoryID == inventoryID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of pending comments.
func (b *CommentBuffer) Count(_ context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.pending)), nil
}

// Flush immediately writes all pending comments to the database.
func (b *CommentBuffer) Flush(ctx context.Context) error {
	b.mu.Lock()

	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}

	comments := make([]*domain.Comment, 0, len(b.pending))
	for _, c := range b.pending {
		comments = append(comments, c)
	}
	b.pending = make(map[string]*domain.Comment)
	b.mu.Unlock()

	log.Printf("[CommentBuffer] Flushing %d comments to database", len(comments))

	if err := b.flushFunc(ctx, comments); err != nil {
		log.Printf("[CommentBuffer] Flush error: %v", err)
		// Re-add failed comments so the next tick retries them.
		b.mu.Lock()
		for _, c := range comments {
			if _, exists := b.pending[c.ID]; !exists {
				b.pending[c.ID] = c
			}
		}
		b.mu.Unlock()
		return err
	}

	return nil
}

// backgroundFlush runs the periodic flush to database.
func (b *CommentBuffer) backgroundFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := b.Flush(ctx); err != nil {
				log.Printf("[CommentBuffer] Background flush error: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			// Final flush on shutdown
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			b.Flush(ctx)
			cancel()
			return
		}
	}
}

// Close stops the background flush and performs a final flush.
func (b *CommentBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		close(b.stopFlush)
	})
	return nil
}
