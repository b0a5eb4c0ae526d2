package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/bestiary/pkg/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		origin     string
		wantOrigin string
		wantCreds  string
	}{
		{
			name:   "disabled",
			cfg:    middleware.CORSConfig{Enabled: false, Origins: []string{"http://example.com"}},
			origin: "http://example.com",
		},
		{
			name: "allowed origin",
			cfg: middleware.CORSConfig{
				Enabled:        true,
				Origins:        []string{"http://example.com"},
				AllowedMethods: []string{"GET", "POST"},
			},
			origin:     "http://example.com",
			wantOrigin: "http://example.com",
		},
		{
			name:   "disallowed origin",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{"http://allowed.com"}},
			origin: "http://denied.com",
		},
		{
			name: "credentials",
			cfg: middleware.CORSConfig{
				Enabled:          true,
				Origins:          []string{"http://example.com"},
				AllowCredentials: true,
			},
			origin:     "http://example.com",
			wantOrigin: "http://example.com",
			wantCreds:  "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(&tt.cfg)(okHandler())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Origin", tt.origin)
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("allow-credentials: got %q, want %q", got, tt.wantCreds)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
	}

	var called bool
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/prompts", nil)
	req.Header.Set("Origin", "http://example.com")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status: got %d, want 200", rec.Code)
	}
	if called {
		t.Error("handler should not be called for preflight")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("allow-methods: got %s", got)
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/prompts", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}

	out := buf.String()
	for _, want := range []string{"method=POST", "uri=/prompts", "status=201"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerDefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/styles", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log output %q missing status=200", buf.String())
	}
}

func TestMaxBody(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		body    string
		wantErr bool
	}{
		{"under limit", 16, "short", false},
		{"over limit", 4, "much too long", true},
		{"disabled", 0, "anything at all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			handler := middleware.MaxBody(tt.limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
			}))

			req := httptest.NewRequest("POST", "/prompts", strings.NewReader(tt.body))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if (readErr != nil) != tt.wantErr {
				t.Errorf("read error = %v, wantErr %v", readErr, tt.wantErr)
			}
		})
	}
}

func TestCORSConfigFinalizeDefaults(t *testing.T) {
	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if strings.Join(cfg.AllowedMethods, ",") != "GET,POST,OPTIONS" {
		t.Errorf("allowed_methods: got %v", cfg.AllowedMethods)
	}
	if strings.Join(cfg.AllowedHeaders, ",") != "Content-Type" {
		t.Errorf("allowed_headers: got %v", cfg.AllowedHeaders)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.com, http://b.com")
	t.Setenv("TEST_CORS_CREDS", "true")
	t.Setenv("TEST_CORS_MAX_AGE", "60")

	env := &middleware.CORSEnv{
		Enabled:          "TEST_CORS_ENABLED",
		Origins:          "TEST_CORS_ORIGINS",
		AllowCredentials: "TEST_CORS_CREDS",
		MaxAge:           "TEST_CORS_MAX_AGE",
	}

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "http://a.com" || cfg.Origins[1] != "http://b.com" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if !cfg.AllowCredentials {
		t.Error("allow_credentials should be true")
	}
	if cfg.MaxAge != 60 {
		t.Errorf("max_age: got %d, want 60", cfg.MaxAge)
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Origins:        []string{"http://base.com"},
		AllowedMethods: []string{"GET"},
		MaxAge:         3600,
	}

	base.Merge(&middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://overlay.com"},
		MaxAge:  7200,
	})

	if !base.Enabled {
		t.Error("enabled should be true after merge")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "http://overlay.com" {
		t.Errorf("origins: got %v", base.Origins)
	}
	if len(base.AllowedMethods) != 1 || base.AllowedMethods[0] != "GET" {
		t.Errorf("allowed_methods should be preserved, got %v", base.AllowedMethods)
	}
	if base.MaxAge != 7200 {
		t.Errorf("max_age: got %d, want 7200", base.MaxAge)
	}
}

func TestCountRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := middleware.NewRequestCounter(reg)

	handler := middleware.CountRequests(counter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/prompts", "/styles", "/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	tests := []struct {
		status string
		want   float64
	}{
		{"200", 2},
		{"404", 1},
		{"500", 0},
	}

	for _, tt := range tests {
		if got := testutil.ToFloat64(counter.WithLabelValues("GET", tt.status)); got != tt.want {
			t.Errorf("GET %s: got %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNewRequestCounterRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	middleware.NewRequestCounter(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering the counter twice should panic")
		}
	}()
	middleware.NewRequestCounter(reg)
}
