// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

// Handler serves the identity of the caller.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	Authenticated bool   `json:"authenticated"`
	ID            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	LoginID       string `json:"login_id,omitempty"`
	Role          string `json:"role,omitempty"`
	ChapterID     string `json:"chapter_id,omitempty"`
	Admin         bool   `json:"admin"`
}

// ServeUserInfo returns the caller's authentication status, role and
// chapter scope. Unauthenticated callers get authenticated=false, not 401.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	user, ok := auth.CurrentUser(r)
	if !ok {
		errorsfeature.JSON(w, http.StatusOK, userInfo{})
		return
	}

	errorsfeature.JSON(w, http.StatusOK, userInfo{
		Authenticated: true,
		ID:            user.ID,
		Name:          user.Name,
		LoginID:       user.LoginID,
		Role:          user.Role,
		ChapterID:     user.ChapterID,
		Admin:         user.IsAdmin(),
	})
}
