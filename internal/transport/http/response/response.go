package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/pkg/apierror"
)

// envelope is the uniform JSON body shape for all endpoints.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// OK writes a 200 response with the data envelope.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the data envelope.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// JSON writes an arbitrary-status success envelope.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Printf("[Response] Encode error: %v", err)
	}
}

// Error writes an error envelope, translating domain errors to their HTTP
// status. Unknown errors become a generic 500 without leaking internals.
func Error(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	w.Write(apiErr.ToJSON())
}

func toAPIError(err error) *apierror.APIError {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var domErr *domain.CustomError
	if errors.As(err, &domErr) {
		switch domErr.Code {
		case "NOT_FOUND":
			return apierror.NotFound(domErr.Message)
		case "DUPLICATE_ID", "VERSION_CONFLICT":
			return apierror.Conflict(domErr.Code, domErr.Message)
		}
	}

	log.Printf("[Response] Internal error: %v", err)
	return apierror.InternalError("internal server error")
}
