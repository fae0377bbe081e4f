/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. RateLimit:  Strict on login, lenient elsewhere

ROUTE GROUPS:
  /api/login                Public (rate limited)
  /api/*                    Session required (bearer token)
  /api/admin/*              Admin role required

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Session/role middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(StrictLimit))
			r.Post("/login", h.Login)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(LenientLimit))
			r.Use(h.RequireSession)

			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Get("/earnings", h.GetEarnings)
			r.Get("/wellness", h.GetWellness)
			r.Get("/transactions", h.ListTransactions)

			r.Route("/advances", func(r chi.Router) {
				r.Get("/", h.GetAdvance)
				r.Post("/", h.SubmitAdvance)
				r.Post("/authorize", h.AuthorizeAdvance)
				r.Post("/confirm", h.ConfirmAdvance)
				r.Post("/cancel", h.CancelAdvance)
			})

			r.Route("/vouchers", func(r chi.Router) {
				r.Get("/", h.SearchVouchers)
				r.Post("/{id}/purchase", h.PurchaseVoucher)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Delete("/{id}", h.DismissNotification)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(h.RequireAdmin)

				r.Get("/users", h.AdminListUsers)
				r.Post("/users", h.AdminSaveUser)
				r.Get("/employers", h.AdminListEmployers)
				r.Post("/employers", h.AdminSaveEmployer)
				r.Get("/transactions", h.AdminListTransactions)
				r.Post("/transactions/{id}/status", h.AdminUpdateTransactionStatus)
				r.Post("/vouchers", h.AdminSaveVoucher)
				r.Post("/vouchers/{id}/restock", h.AdminRestockVoucher)
			})
		})
	})

	return r
}
