// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

// MountRoutes registers GET /audit for secretaries and admins. Admins see
// all events; secretaries see only their chapter's.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleSecretary, auth.RoleAdmin))
		pr.Get("/audit", h.ServeList)
	})
}
