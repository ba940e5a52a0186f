package service

import (
	"context"
	"time"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/repository"
	"invhub-rest-api/pkg/uid"
)

// CommentSink buffers posted comments ahead of the periodic database flush.
// Satisfied by both the Redis and the in-memory buffer.
type CommentSink interface {
	Add(ctx context.Context, c *domain.Comment) error
	ListPending(ctx context.Context, inventoryID string) ([]*domain.Comment, error)
}

// CommentService handles inventory discussion threads. Writes go through the
// buffer when one is wired; reads merge the buffer with the persisted rows
// so a just-posted comment is visible before the flush.
type CommentService struct {
	repo   repository.CommentRepository
	buffer CommentSink
	events EventPublisher
}

// NewCommentService creates a new comment service.
// Returns nil if repo is nil (required dependency).
func NewCommentService(repo repository.CommentRepository, buffer CommentSink, events EventPublisher) *CommentService {
	if repo == nil {
		return nil
	}
	return &CommentService{
		repo:   repo,
		buffer: buffer, // Optional; nil means direct database writes
		events: events, // Optional, can be nil
	}
}

// PostComment records a comment on an inventory.
func (s *CommentService) PostComment(ctx context.Context, inventoryID, author, body string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:          uid.New(),
		InventoryID: inventoryID,
		Author:      author,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}

	if s.buffer != nil {
		if err := s.buffer.Add(ctx, c); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.BatchInsertComments(ctx, []*domain.Comment{c}); err != nil {
			return nil, err
		}
	}

	if s.events != nil {
		s.events.PublishEvent(ctx, inventoryID, "comment_posted", c)
	}
	return c, nil
}

// ListComments returns persisted and still-buffered comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, inventoryID string) ([]*domain.Comment, error) {
	persisted, err := s.repo.ListComments(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	if s.buffer == nil {
		return persisted, nil
	}

	pending, err := s.buffer.ListPending(ctx, inventoryID)
	if err != nil {
		// Buffer reads are best effort; the persisted rows still answer.
		return persisted, nil
	}

	seen := make(map[string]bool, len(persisted))
	for _, c := range persisted {
		seen[c.ID] = true
	}
	for _, c := range pending {
		if !seen[c.ID] {
			persisted = append(persisted, c)
		}
	}
	return persisted, nil
}
