// internal/app/features/settings/routes.go
package settings

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

// MountRoutes mounts the chapter branding routes. Reads need a signed-in
// user of the chapter; writes need a secretary or admin.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/chapters/{id}/settings", h.ServeSettings)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleSecretary, auth.RoleAdmin))
		pr.Put("/chapters/{id}/settings", h.UpdateSettings)
		pr.Post("/chapters/{id}/logo", h.UploadLogo)
		pr.Delete("/chapters/{id}/logo", h.DeleteLogo)
	})
}
