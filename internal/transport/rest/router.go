package rest

import (
	"database/sql"
	"log/slog"

	"github.com/debtflow/collections/internal/card"
	"github.com/debtflow/collections/internal/payment"
	"github.com/debtflow/collections/internal/remittance"
	"github.com/debtflow/collections/internal/transport/middleware"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins string, paymentHandler *payment.Handler, cardHandler *card.Handler, remittanceHandler *remittance.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Mount API under /api/v1
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Payment lifecycle routes
		if paymentHandler != nil {
			r.Route("/payments", func(pr chi.Router) {
				pr.Post("/", paymentHandler.RecordIntake)           // POST /payments
				pr.Get("/", paymentHandler.ListPayments)            // GET /payments
				pr.Post("/post-all", paymentHandler.PostAllProcessed) // POST /payments/post-all
				pr.Get("/activity", paymentHandler.ListActivity)    // GET /payments/activity
				pr.Get("/{id}", paymentHandler.GetPayment)          // GET /payments/:id
				pr.Post("/{id}/submit", paymentHandler.Submit)      // POST /payments/:id/submit
				pr.Post("/{id}/rerun", paymentHandler.Rerun)        // POST /payments/:id/rerun
				pr.Post("/{id}/post", paymentHandler.Post)          // POST /payments/:id/post
				pr.Post("/{id}/reverse", paymentHandler.Reverse)    // POST /payments/:id/reverse
			})
		}

		// Card routes
		if cardHandler != nil {
			r.Post("/cards/identify", cardHandler.IdentifyCard)
			r.Route("/debtors/{id}/cards", func(cr chi.Router) {
				cr.Post("/", cardHandler.CreateStoredCard)
				cr.Get("/", cardHandler.ListDebtorCards)
			})
		}

		// Remittance reporting
		if remittanceHandler != nil {
			r.Get("/remittance/summary", remittanceHandler.Summary)
		}
	})
}
