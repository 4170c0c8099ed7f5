package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddlewareAllowAll(t *testing.T) {
	handler := CORSMiddlewareWithConfig(CORSConfig{}, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header to allow all origins")
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS methods header")
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "" {
		t.Error("credentials must not be allowed with a wildcard origin")
	}
}

func TestCORSMiddlewareWithConfigRestrictedOrigins(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://example.com", "https://trusted.com"},
	}
	handler := CORSMiddlewareWithConfig(cfg, okHandler())

	tests := []struct {
		name              string
		origin            string
		method            string
		expectStatus      int
		expectAllowOrigin string
		expectCredentials bool
	}{
		{"allowed origin", "https://example.com", http.MethodGet, http.StatusOK, "https://example.com", true},
		{"second allowed origin", "https://trusted.com", http.MethodGet, http.StatusOK, "https://trusted.com", true},
		{"disallowed origin", "https://evil.com", http.MethodGet, http.StatusOK, "", false},
		{"no origin", "", http.MethodGet, http.StatusOK, "", false},
		{"disallowed preflight", "https://evil.com", http.MethodOptions, http.StatusForbidden, "", false},
		{"allowed preflight", "https://example.com", http.MethodOptions, http.StatusOK, "https://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/generate", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.expectStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.expectStatus)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.expectAllowOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.expectAllowOrigin)
			}
			if got := resp.Header.Get("Access-Control-Allow-Credentials") == "true"; got != tt.expectCredentials {
				t.Errorf("Allow-Credentials = %v, want %v", got, tt.expectCredentials)
			}
		})
	}
}

func TestCORSMiddlewareOptionsRequest(t *testing.T) {
	called := false
	handler := CORSMiddlewareWithConfig(CORSConfig{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for preflight, got %d", w.Code)
	}
	if called {
		t.Error("preflight should not reach the wrapped handler")
	}
}

func TestAbsPath(t *testing.T) {
	abs := AbsPath("decks")
	if !filepath.IsAbs(abs) {
		t.Errorf("AbsPath(decks) = %q, want absolute path", abs)
	}

	already := filepath.Join(t.TempDir(), "lessons.db")
	if got := AbsPath(already); got != already {
		t.Errorf("AbsPath(%q) = %q", already, got)
	}
}

func TestTimingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(&buf, logging.LevelDebug, logging.FormatJSON)
	t.Cleanup(func() { logging.InitLogger(logging.LevelInfo, logging.FormatJSON) })

	handler := TimingMiddleware(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(buf.String(), "request timing") {
		t.Errorf("expected timing log entry, got %q", buf.String())
	}
}

func TestTimingMiddlewareSlowRequest(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(&buf, logging.LevelInfo, logging.FormatJSON)
	t.Cleanup(func() { logging.InitLogger(logging.LevelInfo, logging.FormatJSON) })

	handler := TimingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(SlowRequestThreshold + 50*time.Millisecond)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate", nil))

	out := buf.String()
	if !strings.Contains(out, "slow request") || !strings.Contains(out, "/api/generate") {
		t.Errorf("expected slow request warning, got %q", out)
	}
}
