package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/repository"
	"invhub-rest-api/internal/transport/http/response"
	"invhub-rest-api/pkg/apierror"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyAccount is the key for storing the resolved account in
	// request context.
	ContextKeyAccount ContextKey = "account"
)

// accountRepoInstance is set by SetAccountRepository for key resolution.
var accountRepoInstance repository.AccountRepository

// SetAccountRepository wires the optional users-database lookup. When unset,
// only the env-var API keys are accepted and callers stay anonymous.
func SetAccountRepository(repo repository.AccountRepository) {
	accountRepoInstance = repo
}

// APIKeyAuth middleware validates the caller's API key. Keys come either
// from the main users database (when wired) or from the API_KEYS env var
// for server-to-server use.
func APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check
		if r.URL.Path == "/api/v1/health" || r.URL.Path == "/api/v1/ready" {
			next.ServeHTTP(w, r)
			return
		}

		// Skip auth for admin dashboard and static files
		if r.URL.Path == "/admin" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			// Also check Authorization header (Bearer token style)
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			response.Error(w, apierror.Unauthorized("Authentication required. Use X-API-Key header."))
			return
		}

		// Try the users database first (resolves a named account).
		if accountRepoInstance != nil {
			acc, err := accountRepoInstance.GetAccountByAPIKey(r.Context(), apiKey)
			if err == nil {
				ctx := context.WithValue(r.Context(), ContextKeyAccount, acc)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		// Fall back to static env-var keys (anonymous server-to-server).
		validKeys := getValidAPIKeys()
		if !isValidKey(apiKey, validKeys) {
			response.Error(w, apierror.Unauthorized("Invalid API key"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getValidAPIKeys returns list of valid API keys from environment.
func getValidAPIKeys() []string {
	// Get from environment variable (comma-separated)
	keysEnv := os.Getenv("API_KEYS")
	if keysEnv == "" {
		// Fallback to single key
		singleKey := os.Getenv("API_KEY")
		if singleKey != "" {
			return []string{singleKey}
		}
		return nil
	}

	keys := strings.Split(keysEnv, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

// isValidKey checks if the provided key is in the valid keys list.
func isValidKey(key string, validKeys []string) bool {
	for _, valid := range validKeys {
		if key == valid {
			return true
		}
	}
	return false
}

// GetAccountFromContext retrieves the resolved account from request context.
// Nil for anonymous (env-key) callers.
func GetAccountFromContext(ctx context.Context) *domain.Account {
	if acc, ok := ctx.Value(ContextKeyAccount).(*domain.Account); ok {
		return acc
	}
	return nil
}
