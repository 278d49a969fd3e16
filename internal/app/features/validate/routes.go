// internal/app/features/validate/routes.go
package validate

import "github.com/go-chi/chi/v5"

// Routes returns the public validation router. No authentication.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{hash}", h.Serve)
	return r
}
