package handler

import (
	"encoding/json"
	"net/http"

	"invhub-rest-api/internal/service"
	"invhub-rest-api/internal/transport/http/middleware"
	"invhub-rest-api/internal/transport/http/response"
	"invhub-rest-api/pkg/apierror"

	"github.com/go-chi/chi/v5"
)

// CommentHandler handles inventory discussion requests.
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// PostCommentRequest is the body for POST /api/v1/inventories/{id}/comments.
type PostCommentRequest struct {
	Body string `json:"body" validate:"required,max=8000"`
}

// PostComment handles POST /api/v1/inventories/{id}/comments
func (h *CommentHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	var req PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(&req); err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	author := "anonymous"
	if acc := middleware.GetAccountFromContext(r.Context()); acc != nil {
		author = acc.DisplayName
	}

	c, err := h.commentService.PostComment(r.Context(), chi.URLParam(r, "id"), author, req.Body)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, c)
}

// ListComments handles GET /api/v1/inventories/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"comments": comments,
		"count":    len(comments),
	})
}
