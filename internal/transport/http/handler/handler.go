package handler

import "github.com/go-playground/validator/v10"

// validate checks request DTO struct tags; shared by all handlers.
var validate = validator.New()

// Handler contains the dependency-free HTTP handlers (health/readiness).
type Handler struct{}

// New creates a new handler.
func New() *Handler {
	return &Handler{}
}
