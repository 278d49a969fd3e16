// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

// MountRoutes mounts the lifecycle endpoint. Secretaries drive their own
// chapter's sessions; admins any.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleSecretary, auth.RoleAdmin))
		pr.Post("/sessions/{id}/transition", h.Transition)
	})
}
