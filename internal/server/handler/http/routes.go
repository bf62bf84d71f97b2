package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kwanjau/admissions/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the admission portal API.
//
// Routes:
//
//	POST  /api/register                        → authHandler.Register
//	POST  /api/login                           → authHandler.Login
//	POST  /api/logout                          → authHandler.Logout        (session)
//	GET   /api/user                            → authHandler.CurrentUser   (session)
//	POST  /api/applications                    → appHandler.Save           (session)
//	GET   /api/applications/user               → appHandler.GetOwn         (session)
//	GET   /api/applications                    → appHandler.List           (session, admin)
//	PATCH /api/applications/{id}/status        → appHandler.SetStatus      (session)
//	POST  /api/documents                       → docHandler.Upload         (session)
//	GET   /api/documents/{applicationId}       → docHandler.List           (session)
//	PATCH /api/documents/{id}/verify           → docHandler.Verify         (session, admin)
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON bodied requests
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. SessionAuth (protected group only)   — enforces session authentication
func NewRouter(
	authHandler *AuthHandler,
	appHandler *ApplicationHandler,
	docHandler *DocumentHandler,
	auth middleware.Authenticator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid session
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(auth))

			r.Post("/logout", authHandler.Logout)
			r.Get("/user", authHandler.CurrentUser)

			r.Post("/applications", appHandler.Save)
			r.Get("/applications/user", appHandler.GetOwn)
			r.Get("/applications", appHandler.List)
			r.Patch("/applications/{id}/status", appHandler.SetStatus)

			r.Post("/documents", docHandler.Upload)
			r.Get("/documents/{applicationId}", docHandler.List)
			r.Patch("/documents/{id}/verify", docHandler.Verify)
		})
	})

	return r
}
