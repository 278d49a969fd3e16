package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestLimiter_AllowAndWindow(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := New(2, time.Minute)
	defer l.Stop()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request in window should be limited")
	}
	if l.Remaining("a") != 0 || l.Remaining("b") != 2 {
		t.Errorf("remaining a=%d b=%d", l.Remaining("a"), l.Remaining("b"))
	}

	now = now.Add(time.Minute + time.Second)
	if !l.Allow("a") {
		t.Error("new window should allow")
	}

	l.Allow("a")
	l.Reset("a")
	if l.Remaining("a") != 2 {
		t.Error("reset did not clear the window")
	}
}

func TestMiddleware(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := New(1, time.Minute)
	defer l.Stop()
	h := Middleware(l, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/validate/x", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	if rec := do("203.0.113.5"); rec.Code != http.StatusOK {
		t.Fatalf("first = %d", rec.Code)
	}
	rec := do("203.0.113.5")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if rec := do("198.51.100.7"); rec.Code != http.StatusOK {
		t.Errorf("other client = %d", rec.Code)
	}

	if got := Middleware(nil, zap.NewNop()); got == nil {
		t.Fatal("nil limiter middleware")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
