package http

import (
	"net/http"

	"invhub-rest-api/internal/transport/http/handler"
	"invhub-rest-api/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router. commentHandler and
// adminHandler are optional - pass nil to disable those route groups.
func NewRouter(h *handler.Handler, invHandler *handler.InventoryHandler, itemHandler *handler.ItemHandler, commentHandler *handler.CommentHandler, adminHandler *handler.AdminHandler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API key authentication (skip for health checks and static files)
	r.Use(middleware.APIKeyAuth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints (no auth required)
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		// Template preview (display-only, not a reservation)
		r.Post("/preview", itemHandler.PreviewTemplate)

		// Inventory endpoints
		r.Route("/inventories", func(r chi.Router) {
			r.Post("/", invHandler.CreateInventory)
			r.Get("/", invHandler.ListInventories)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", invHandler.GetInventory)
				r.Put("/", invHandler.UpdateInventory)
				r.Delete("/", invHandler.DeleteInventory)

				r.Post("/fields", invHandler.AddField)
				r.Delete("/fields", invHandler.RemoveField)

				r.Get("/next-id", itemHandler.PreviewNextID)

				r.Post("/items", itemHandler.CreateItem)
				r.Get("/items", itemHandler.ListItems)

				if commentHandler != nil {
					r.Post("/comments", commentHandler.PostComment)
					r.Get("/comments", commentHandler.ListComments)
				}
			})
		})

		// Item endpoints addressed by record ID
		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/", itemHandler.GetItem)
			r.Put("/", itemHandler.UpdateItem)
			r.Delete("/", itemHandler.DeleteItem)
		})

		// Admin endpoints
		if adminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", adminHandler.GetStats)
			})
		}
	})

	// Static files (admin dashboard)
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Admin dashboard redirect
	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/admin.html", http.StatusMovedPermanently)
	})

	return r
}
