package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/request-management/internal/auth"
	"github.com/frahmantamala/request-management/internal/notification"
	"github.com/frahmantamala/request-management/internal/request"
	"github.com/frahmantamala/request-management/internal/transport/middleware"
	"github.com/frahmantamala/request-management/internal/transport/swagger"
)

// RegisterAllRoutes wires every endpoint. The auth handler's middleware
// is the single identity gate; each protected group goes through it and
// nothing else decides who the caller is.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins string, authHandler *auth.Handler, requestHandler *request.Handler, notificationHandler *notification.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)
	})

	if authHandler != nil {
		router.Route("/auth", func(ar chi.Router) {
			ar.Get("/google/login", authHandler.GoogleLogin)
			ar.Get("/google/callback", authHandler.GoogleCallback)

			ar.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Get("/user", authHandler.GetUser)
			})
		})

		if requestHandler != nil {
			router.Route("/requests", func(rr chi.Router) {
				rr.Use(authHandler.AuthMiddleware)
				rr.Post("/", requestHandler.CreateRequest)
				rr.Get("/", requestHandler.ListRequests)
				rr.Patch("/{id}/status", requestHandler.DecideRequest)
			})
		}

		if notificationHandler != nil {
			router.Group(func(nr chi.Router) {
				nr.Use(authHandler.AuthMiddleware)
				nr.Post("/notify", notificationHandler.Notify)
			})
		}
	}
}
