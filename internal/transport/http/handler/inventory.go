package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/schema"
	"invhub-rest-api/internal/service"
	"invhub-rest-api/internal/transport/http/middleware"
	"invhub-rest-api/internal/transport/http/response"
	"invhub-rest-api/pkg/apierror"

	"github.com/go-chi/chi/v5"
)

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// CreateInventoryRequest is the body for POST /api/v1/inventories.
type CreateInventoryRequest struct {
	Title       string                   `json:"title" validate:"required,max=255"`
	Description string                   `json:"description" validate:"max=4000"`
	IDFormat    []idformat.Element       `json:"id_format"`
	Schema      schema.CustomFieldSchema `json:"field_schema"`
}

// UpdateInventoryRequest is the body for PUT /api/v1/inventories/{id}.
type UpdateInventoryRequest struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description" validate:"max=4000"`
	IDFormat    []idformat.Element `json:"id_format"`
	Version     int64              `json:"version" validate:"required,min=1"`
}

// FieldRequest is the body for the schema add/remove endpoints.
type FieldRequest struct {
	Type    string `json:"type" validate:"required,oneof=single_line_text multi_line_text numeric boolean document_image"`
	Name    string `json:"name" validate:"required,max=255"`
	Version int64  `json:"version" validate:"required,min=1"`
}

// CreateInventory handles POST /api/v1/inventories
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req CreateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(&req); err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	inv, err := h.inventoryService.CreateInventory(r.Context(), callerID(r), req.Title, req.Description, req.IDFormat, req.Schema)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, inv)
}

// GetInventory handles GET /api/v1/inventories/{id}
// The response includes the derived slot layout so the UI can render the
// item table without re-deriving it client-side.
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventoryService.GetInventory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"inventory": inv,
		"slots":     h.inventoryService.SlotLayout(inv),
	})
}

// ListInventories handles GET /api/v1/inventories?owner_id=...
func (h *InventoryHandler) ListInventories(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.inventoryService.ListInventories(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"inventories": inventories,
		"count":       len(inventories),
	})
}

// UpdateInventory handles PUT /api/v1/inventories/{id}
// Template edits apply to new items only; existing custom IDs are never
// regenerated.
func (h *InventoryHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	var req UpdateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(&req); err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	inv, err := h.inventoryService.UpdateInventory(r.Context(), chi.URLParam(r, "id"), req.Version, req.Title, req.Description, req.IDFormat)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, inv)
}

// DeleteInventory handles DELETE /api/v1/inventories/{id}
func (h *InventoryHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.inventoryService.DeleteInventory(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]string{"status": "deleted"})
}

// AddField handles POST /api/v1/inventories/{id}/fields
func (h *InventoryHandler) AddField(w http.ResponseWriter, r *http.Request) {
	h.mutateField(w, r, h.inventoryService.AddField)
}

// RemoveField handles DELETE /api/v1/inventories/{id}/fields
// The re-derived slot layout is returned because removing a field shifts
// the positional binding of every later field in the same pool.
func (h *InventoryHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	h.mutateField(w, r, h.inventoryService.RemoveField)
}

type fieldMutation func(ctx context.Context, id string, expectedVersion int64, fieldType, name string) (*domain.Inventory, schema.FixedSlotSet, error)

func (h *InventoryHandler) mutateField(w http.ResponseWriter, r *http.Request, op fieldMutation) {
	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(&req); err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	inv, slots, err := op(r.Context(), chi.URLParam(r, "id"), req.Version, req.Type, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"inventory": inv,
		"slots":     slots,
	})
}

// callerID returns the authenticated account's ID, or empty for anonymous
// env-key callers.
func callerID(r *http.Request) string {
	if acc := middleware.GetAccountFromContext(r.Context()); acc != nil {
		return acc.DisplayName
	}
	return ""
}
