package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/app/system/metrics"
	"github.com/dalemusser/chapterhub/internal/testutil"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "chapterhub_test",
		SecretKey:         strings.Repeat("k", 40),
		SessionName:       "chapterhub-session",
		SessionMaxAge:     time.Hour,
		StorageType:       "local",
		StorageRoot:       "./storage",
		ValidationBaseURL: "https://docs.example.org",
		BrowserPoolSize:   1,
		RenderTimeout:     time.Second,
		NoticeLeadDays:    7,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		env     string
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x" }, wantErr: "MongoDB URI"},
		{name: "unknown storage", mutate: func(c *AppConfig) { c.StorageType = "ftp" }, wantErr: "storage_type"},
		{name: "local without root", mutate: func(c *AppConfig) { c.StorageRoot = " " }, wantErr: "storage_root"},
		{name: "s3 without bucket", mutate: func(c *AppConfig) { c.StorageType = "s3"; c.StorageS3Region = "us-east-1" }, wantErr: "storage_s3_bucket"},
		{name: "s3 complete", mutate: func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Region = "us-east-1"
			c.StorageS3Bucket = "docs"
		}},
		{name: "relative validation url", mutate: func(c *AppConfig) { c.ValidationBaseURL = "/validate" }, wantErr: "validation_base_url"},
		{name: "empty pool", mutate: func(c *AppConfig) { c.BrowserPoolSize = 0 }, wantErr: "browser_pool_size"},
		{name: "negative lead", mutate: func(c *AppConfig) { c.NoticeLeadDays = -1 }, wantErr: "notice_lead_days"},
		{name: "weak key in prod", mutate: func(c *AppConfig) { c.SecretKey = "short" }, env: "prod", wantErr: "secret_key"},
		{name: "weak key in dev", mutate: func(c *AppConfig) { c.SecretKey = "short" }, env: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			core := &config.CoreConfig{Env: tt.env}
			err := ValidateConfig(core, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty list should be nil")
	}
}

func TestEnsureSchema_CreatesGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// Running twice is harmless.
	if err := EnsureSchema(ctx, nil, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}

	cur, err := db.Collection("chapter_sessions").Indexes().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var idx []bson.M
	if err := cur.All(ctx, &idx); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, ix := range idx {
		if ix["name"] == "uniq_sessions_chapter_number" {
			found = true
		}
	}
	if !found {
		t.Errorf("session number guard missing, indexes: %v", idx)
	}
}

func TestBuildHandler_Wiring(t *testing.T) {
	db := testutil.SetupTestDB(t)

	store, err := artifacts.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	cfg := validAppConfig()
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	svc := buildServices(cfg, deps, store, metrics.New(reg), testLogger())
	svc.Registry = reg
	deps.Services = svc
	defer svc.Chrome.Close()

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	tests := []struct {
		target string
		want   int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/validate/" + strings.Repeat("0", 64), http.StatusNotFound},
		{"/validate/not-a-hash", http.StatusNotFound},
		{"/templates/minutes", http.StatusUnauthorized},
		{"/audit", http.StatusUnauthorized},
		{"/chapters/" + primitive.NewObjectID().Hex() + "/settings", http.StatusUnauthorized},
		{"/me", http.StatusOK},
		{"/no/such/route", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d (body %s)", tt.target, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestBuildHandler_RequiresStartup(t *testing.T) {
	if _, err := BuildHandler(&config.CoreConfig{}, validAppConfig(), DBDeps{}, testLogger()); err == nil {
		t.Fatal("expected error without services")
	}
}
