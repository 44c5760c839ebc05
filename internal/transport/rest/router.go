package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/claim-management/internal/autoreview"
	"github.com/frahmantamala/claim-management/internal/claim"
	"github.com/frahmantamala/claim-management/internal/identity"
	"github.com/frahmantamala/claim-management/internal/module"
	"github.com/frahmantamala/claim-management/internal/transport/middleware"
	"github.com/frahmantamala/claim-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, identityService *identity.Service, claimHandler *claim.Handler, ruleHandler *autoreview.Handler, moduleHandler *module.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.UserContext(identityService, logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public module catalog route
		if moduleHandler != nil {
			r.Get("/modules", moduleHandler.GetModules)
		}

		// Routes that require a resolved upstream identity
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireUser)

			if claimHandler != nil {
				pr.Route("/claims", func(cr chi.Router) {
					cr.Group(func(sr chi.Router) {
						sr.Use(middleware.RequirePermissions(identity.PermSubmitClaims, identity.PermAdmin))
						sr.Post("/", claimHandler.CreateClaim) // POST /claims
					})
					cr.Get("/", claimHandler.GetAllClaims) // GET /claims
					cr.Get("/{id}", claimHandler.GetClaim) // GET /claims/:id

					// Reviewer route; the service decides which track applies
					cr.Group(func(rr chi.Router) {
						rr.Use(middleware.RequireReviewer())
						rr.Patch("/{id}/review", claimHandler.ReviewClaim) // PATCH /claims/:id/review
					})
				})
			}

			if ruleHandler != nil {
				pr.Group(func(rr chi.Router) {
					rr.Use(middleware.RequireReviewer())

					rr.Route("/auto-review/rules", func(ar chi.Router) {
						ar.Post("/", ruleHandler.CreateRule)        // POST /auto-review/rules
						ar.Get("/", ruleHandler.ListRules)          // GET /auto-review/rules
						ar.Get("/{id}", ruleHandler.GetRule)        // GET /auto-review/rules/:id
						ar.Put("/{id}", ruleHandler.UpdateRule)     // PUT /auto-review/rules/:id
						ar.Delete("/{id}", ruleHandler.DeleteRule)  // DELETE /auto-review/rules/:id
					})
					rr.Post("/auto-review/run", ruleHandler.RunAutoReview) // POST /auto-review/run
				})
			}
		})
	})
}
