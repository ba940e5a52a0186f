package handler

import (
	"context"
	"net/http"
	"time"

	"invhub-rest-api/internal/repository"
	"invhub-rest-api/internal/transport/http/response"
)

// PendingCounter reports the depth of the comment write-behind buffer.
type PendingCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AdminHandler serves the stats dashboard endpoints.
type AdminHandler struct {
	buffer PendingCounter
	store  *repository.SQLiteStore
}

// NewAdminHandler creates a new admin handler. buffer may be nil when Redis
// is unavailable.
func NewAdminHandler(buffer PendingCounter, store *repository.SQLiteStore) *AdminHandler {
	return &AdminHandler{
		buffer: buffer,
		store:  store,
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	var pending int64 = -1 // -1 means no buffer wired
	if h.buffer != nil {
		if n, err := h.buffer.Count(r.Context()); err == nil {
			pending = n
		}
	}

	response.OK(w, map[string]interface{}{
		"tables":           stats,
		"pending_comments": pending,
		"timestamp":        time.Now().UTC(),
	})
}
