// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeCookie handles POST /auth/cookie. A caller authenticated by bearer
// token receives a session cookie so browser previews and downloads work
// without the header.
func (h *Handler) ServeCookie(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.SessionMgr.SignIn(w, r, *u); err != nil {
		h.Log.Error("session cookie: save", zap.Error(err), zap.String("user_id", u.ID))
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}
	h.Log.Info("session cookie issued", zap.String("user_id", u.ID), zap.String("role", u.Role))
	w.WriteHeader(http.StatusNoContent)
}

// ServeLogout handles POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// HTMX handling: HX-Redirect forces a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/unauthorized")
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
