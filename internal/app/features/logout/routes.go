// internal/app/features/logout/routes.go
package logout

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

// MountRoutes registers the cookie exchange and logout endpoints.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/auth/cookie", h.ServeCookie)
	})
	// Logout is harmless without a session.
	r.Post("/logout", h.ServeLogout)
}
