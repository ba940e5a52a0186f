package handler

import (
	"encoding/json"
	"net/http"

	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/service"
	"invhub-rest-api/internal/transport/http/response"
	"invhub-rest-api/pkg/apierror"

	"github.com/go-chi/chi/v5"
)

// ItemHandler handles item-related HTTP requests.
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

// CreateItemRequest is the body for POST /api/v1/inventories/{id}/items.
// Values are keyed by the field names of the inventory's current schema.
type CreateItemRequest struct {
	Values map[string]interface{} `json:"values"`
}

// UpdateItemRequest is the body for PUT /api/v1/items/{id}.
type UpdateItemRequest struct {
	Values  map[string]interface{} `json:"values"`
	Version int64                  `json:"version" validate:"required,min=1"`
}

// PreviewRequest is the body for POST /api/v1/preview.
type PreviewRequest struct {
	IDFormat        []idformat.Element `json:"id_format"`
	SequenceOrdinal int                `json:"sequence_ordinal" validate:"min=0"`
}

// CreateItem handles POST /api/v1/inventories/{id}/items
// A DUPLICATE_ID conflict means the generated ID collided; the client
// should resubmit the same payload rather than retry in a loop.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	inventoryID := chi.URLParam(r, "id")

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	item, err := h.itemService.CreateItem(r.Context(), inventoryID, callerID(r), req.Values)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, item)
}

// GetItem handles GET /api/v1/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.itemService.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, item)
}

// ListItems handles GET /api/v1/inventories/{id}/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// UpdateItem handles PUT /api/v1/items/{id}
// Slot values only; the custom ID never changes after creation.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(&req); err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	item, err := h.itemService.UpdateItem(r.Context(), chi.URLParam(r, "id"), req.Version, req.Values)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, item)
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.itemService.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]string{"status": "deleted"})
}

// PreviewNextID handles GET /api/v1/inventories/{id}/next-id
// Display-only hint; the returned ID is not reserved and random elements
// re-roll at creation time.
func (h *ItemHandler) PreviewNextID(w http.ResponseWriter, r *http.Request) {
	id, ordinal, err := h.itemService.PreviewNextID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"next_id":          id,
		"sequence_ordinal": ordinal,
		"authoritative":    false,
	})
}

// PreviewTemplate handles POST /api/v1/preview
// Renders an unsaved template for the template editor.
func (h *ItemHandler) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.SequenceOrdinal <= 0 {
		req.SequenceOrdinal = 1
	}

	response.OK(w, map[string]interface{}{
		"preview":          h.itemService.PreviewTemplate(req.IDFormat, req.SequenceOrdinal),
		"sequence_ordinal": req.SequenceOrdinal,
		"authoritative":    false,
	})
}
