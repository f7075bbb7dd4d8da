package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/analysis"
	"github.com/frahmantamala/envelope-budget/internal/budget"
	"github.com/frahmantamala/envelope-budget/internal/recurring"
	"github.com/frahmantamala/envelope-budget/internal/template"
	"github.com/frahmantamala/envelope-budget/internal/transaction"
	"github.com/frahmantamala/envelope-budget/internal/transport/middleware"
	"github.com/frahmantamala/envelope-budget/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, cfg *internal.Config, store Pinger, transactionHandler *transaction.Handler, templateHandler *template.Handler, budgetHandler *budget.Handler, analysisHandler *analysis.Handler, recurringHandler *recurring.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(store)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Everything below needs a caller identity
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.UserContext(cfg.Auth))

			if transactionHandler != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Post("/", transactionHandler.CreateTransaction)
					tr.Get("/", transactionHandler.ListTransactions)
					tr.Get("/{id}", transactionHandler.GetTransaction)
					tr.Patch("/{id}", transactionHandler.UpdateTransaction)
					tr.Delete("/{id}", transactionHandler.DeleteTransaction)
				})
			}

			if templateHandler != nil {
				pr.Route("/templates", func(tr chi.Router) {
					tr.Post("/", templateHandler.CreateTemplate)
					tr.Get("/", templateHandler.ListTemplates)
					tr.Get("/{name}", templateHandler.GetTemplate)
					tr.Put("/{name}", templateHandler.ReplaceTemplate)
					tr.Delete("/{name}", templateHandler.DeleteTemplate)
				})
			}

			if budgetHandler != nil {
				pr.Route("/budgets", func(br chi.Router) {
					br.Post("/", budgetHandler.GenerateBudgets)
					br.Get("/", budgetHandler.ListBudgets)
					br.Patch("/", budgetHandler.UpdateBudgetAmounts)
					if analysisHandler != nil {
						br.Get("/analysis", analysisHandler.GetAnalysis)
					}
				})
			}

			if recurringHandler != nil {
				pr.Route("/recurring", func(rr chi.Router) {
					rr.Post("/", recurringHandler.CreateRecurring)
					rr.Get("/", recurringHandler.ListRecurring)
					rr.Get("/{id}", recurringHandler.GetRecurring)
					rr.Patch("/{id}", recurringHandler.UpdateRecurring)
					rr.Delete("/{id}", recurringHandler.DeleteRecurring)
				})
			}
		})
	})
}
