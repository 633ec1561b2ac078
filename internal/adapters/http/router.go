package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civicid/sso-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for the credential and
// session use-cases. Keeping only the application dependency here
// preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the HTTP routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior
// across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/sso/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/token/refresh", handler.refreshToken)
		r.Post("/password/reset-request", handler.passwordResetRequest)
		r.Post("/password/reset", handler.passwordReset)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Get("/me", handler.me)
			r.Post("/logout", handler.logout)
			r.Get("/sessions", handler.listSessions)
			r.Get("/sessions/active", handler.activeSessions)
			r.Delete("/sessions", handler.terminateAllSessions)
			r.Delete("/sessions/{session_id}", handler.terminateSession)
			r.Post("/sessions/{session_id}/extend", handler.extendSession)

			r.Group(func(r chi.Router) {
				r.Use(handler.requireAdmin)
				r.Post("/admin/users/{user_id}/lock", handler.adminLockUser)
				r.Post("/admin/users/{user_id}/unlock", handler.adminUnlockUser)
				r.Post("/admin/users/{user_id}/deactivate", handler.adminDeactivateUser)
				r.Delete("/admin/users/{user_id}/sessions", handler.adminTerminateUserSessions)
				r.Get("/admin/audit", handler.listAuditEntries)
				r.Get("/admin/audit/stats", handler.auditStats)
				r.Get("/admin/audit/export", handler.exportAuditEntries)
			})
		})
	})

	return r
}
