// internal/app/features/documents/routes.go
package documents

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// MountRoutes mounts the document endpoints on r. Reads need a signed-in
// user; writes need a secretary or admin. Tenant checks happen in the
// handlers.
func (h *Handler) MountRoutes(r chi.Router, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/templates/{type}", h.GetTemplate)
		pr.Get("/sessions/{id}/minutes-draft", h.GetDraft)
		pr.Get("/documents/{id}/download", h.Download)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleSecretary, auth.RoleAdmin))
		pr.Post("/templates", h.SaveTemplate)
		pr.Post("/templates/preview", h.PreviewTemplate)
		pr.Post("/sessions/{id}/minutes-draft", h.SaveDraft)
		pr.Post("/sessions/{id}/minutes/preview", h.PreviewMinutes)
		pr.Post("/sessions/{id}/minutes/sign", h.SignMinutes)
		pr.Post("/sessions/{id}/notice/generate", h.GenerateNotice)
		pr.Post("/sessions/{id}/certificate", h.IssueCertificate)
		pr.Post("/chapters/{id}/invitation", h.FreeForm(models.KindInvitation))
		pr.Post("/chapters/{id}/congratulation", h.FreeForm(models.KindCongratulation))
	})
}
