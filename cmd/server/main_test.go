package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/hello-openshift/internal/http/v1/greeting"
	"github.com/janisto/hello-openshift/internal/platform/config"
)

// loadConfig loads configuration from a clean environment with the given
// overrides applied.
func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	for _, key := range []string{"HELLO_MESSAGE", "PORT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func testServer(t *testing.T) http.Handler {
	t.Helper()
	return newRouter(loadConfig(t, nil))
}

func TestContextLoads(t *testing.T) {
	srv := testServer(t)
	if srv == nil {
		t.Fatal("expected router to be built")
	}

	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", resp.Code)
	}
}

func TestGreetingScenarios(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"default message", nil, "Hello OpenShift"},
		{"configured message", map[string]string{"HELLO_MESSAGE": "Hi there"}, "Hi there"},
		{"empty message", map[string]string{"HELLO_MESSAGE": ""}, ""},
		{"blank message", map[string]string{"HELLO_MESSAGE": "  "}, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRouter(loadConfig(t, tt.env))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(chimiddleware.RequestIDHeader, "test-greeting-req")
			resp := httptest.NewRecorder()
			srv.ServeHTTP(resp, req)

			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200 got %d", resp.Code)
			}
			if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected application/json, got %q", ct)
			}

			var body map[string]any
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if len(body) != 2 {
				t.Fatalf("expected exactly message and timestamp, got %v", body)
			}
			if body["message"] != tt.want {
				t.Fatalf("expected message %q, got %v", tt.want, body["message"])
			}
			ts, _ := body["timestamp"].(string)
			if _, err := time.Parse(time.RFC3339, ts); err != nil {
				t.Fatalf("timestamp %q is not RFC 3339: %v", ts, err)
			}
		})
	}
}

func TestGreetingCBOR(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/cbor")
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != "application/cbor" {
		t.Fatalf("expected application/cbor, got %q", ct)
	}
	var body greeting.Data
	if err := cbor.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if body.Message != "Hello OpenShift" {
		t.Fatalf("expected default message, got %s", body.Message)
	}
}

func TestWildcardAcceptReturnsJSON(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name   string
		accept string
	}{
		{"wildcard all", "*/*"},
		{"application wildcard", "application/*"},
		{"unsupported type", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept", tt.accept)
			resp := httptest.NewRecorder()
			srv.ServeHTTP(resp, req)

			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d", resp.Code)
			}
			if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected application/json, got %q", ct)
			}
		})
	}
}

func TestResponseHeaders(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "test-headers-req")
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if got := resp.Header().Get(chimiddleware.RequestIDHeader); got != "test-headers-req" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
	if got := resp.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected security headers, got X-Content-Type-Options %q", got)
	}
	if got := resp.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected Cache-Control no-store, got %q", got)
	}
	if got := resp.Header().Get("Vary"); !strings.Contains(got, "Accept") {
		t.Fatalf("expected Vary to include Accept, got %q", got)
	}
}

func TestNotFoundReturnsProblemDetails(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/missing", "/openapi.json", "/docs", "/health"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set(chimiddleware.RequestIDHeader, "test-404-req")
			resp := httptest.NewRecorder()
			srv.ServeHTTP(resp, req)

			if resp.Code != http.StatusNotFound {
				t.Fatalf("expected 404 got %d", resp.Code)
			}
			if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Fatalf("expected application/problem+json content type, got %q", ct)
			}
			var problem huma.ErrorModel
			if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
				t.Fatalf("failed to unmarshal problem: %v", err)
			}
			if problem.Status != http.StatusNotFound || problem.Detail != "resource not found" {
				t.Fatalf("unexpected problem: %+v", problem)
			}
		})
	}
}

func TestMethodNotAllowedOnRoot(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != http.MethodGet {
		t.Fatalf("expected Allow: GET, got %q", allow)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	if problem.Detail != "method POST not allowed" {
		t.Fatalf("unexpected detail: %s", problem.Detail)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestHeadRoot(t *testing.T) {
	srv := testServer(t)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, httptest.NewRequest(http.MethodHead, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for HEAD /, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
}

func TestNewServerUsesConfig(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"PORT": "3000"})
	srv := newServer(cfg, http.NotFoundHandler())

	if srv.Addr != ":3000" {
		t.Fatalf("expected addr :3000, got %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 || srv.MaxHeaderBytes != 64<<10 {
		t.Fatalf("expected hardened server timeouts, got %+v", srv)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := newServer(loadConfig(t, nil), testServer(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from running server, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected serve error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for shutdown")
	}
}

func TestServeReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_ = ln.Close()

	err = serve(context.Background(), &http.Server{ReadHeaderTimeout: time.Second}, ln, time.Second)
	if err == nil {
		t.Fatal("expected error from closed listener")
	}
	if errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("ErrServerClosed must not be reported, got %v", err)
	}
}
