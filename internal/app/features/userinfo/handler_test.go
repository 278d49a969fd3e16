package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/chapterhub/internal/app/features/userinfo"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

func serve(t *testing.T, u *auth.SessionUser) map[string]any {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if u != nil {
		req = auth.WithTestUser(req, u)
	}
	rec := httptest.NewRecorder()
	userinfo.NewHandler().ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestServeUserInfo_Unauthenticated(t *testing.T) {
	body := serve(t, nil)
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v", body["authenticated"])
	}
	if _, ok := body["id"]; ok {
		t.Error("anonymous response carries an id")
	}
}

func TestServeUserInfo_Secretary(t *testing.T) {
	body := serve(t, &auth.SessionUser{ID: "u1", Name: "Secretário", LoginID: "sec@example.org", Role: auth.RoleSecretary, ChapterID: "c1"})
	want := map[string]any{
		"authenticated": true,
		"id":            "u1",
		"role":          auth.RoleSecretary,
		"chapter_id":    "c1",
		"admin":         false,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
}

func TestServeUserInfo_Admin(t *testing.T) {
	body := serve(t, &auth.SessionUser{ID: "a1", Role: auth.RoleAdmin})
	if body["admin"] != true {
		t.Errorf("admin = %v", body["admin"])
	}
}
