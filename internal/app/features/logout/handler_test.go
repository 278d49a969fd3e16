package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/features/logout"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)
	logout.NewHandler(sessionMgr, logger).MountRoutes(r, sessionMgr)
	return r, sessionMgr
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	return nil
}

func TestCookie_ExchangesBearerForSession(t *testing.T) {
	router, sm := newTestRouter(t)
	tok, err := sm.Tokens().Issue(auth.SessionUser{ID: "u1", Name: "Secretário", Role: auth.RoleSecretary, ChapterID: "c1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/cookie", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("expected a session cookie")
	}

	// The cookie alone now authenticates.
	var got *auth.SessionUser
	check := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(c)
	check.ServeHTTP(httptest.NewRecorder(), req2)
	if got == nil || got.ID != "u1" || got.ChapterID != "c1" || got.Role != auth.RoleSecretary {
		t.Errorf("cookie user = %+v", got)
	}
}

func TestCookie_RequiresUser(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/cookie", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLogout_ClearsSessionCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("expected session cookie to be set for deletion")
	}
	if c.MaxAge >= 0 {
		t.Errorf("cookie MaxAge: got %d, want negative (delete)", c.MaxAge)
	}
}

func TestLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("HX-Redirect"); got != "/unauthorized" {
		t.Errorf("HX-Redirect: got %q, want %q", got, "/unauthorized")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestLoadSessionUser_TamperedCookieIgnored(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/cookie", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
