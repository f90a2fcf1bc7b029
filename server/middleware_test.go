package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mindhub/medsafety-api/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		original string
		expected string
	}{
		{"no header", "", "10.0.0.1:1234", "10.0.0.1:1234"},
		{"single ip", "203.0.113.5", "10.0.0.1:1234", "203.0.113.5"},
		{"proxy chain takes first", "203.0.113.5, 10.0.0.2, 10.0.0.3", "10.0.0.1:1234", "203.0.113.5"},
		{"spaces trimmed", " 203.0.113.5 ", "10.0.0.1:1234", "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var observed string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				observed = r.RemoteAddr
			}))

			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.original
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if observed != tt.expected {
				t.Errorf("Expected RemoteAddr %q, got %q", tt.expected, observed)
			}
		})
	}
}

func TestRequestSizeMiddleware_BodyTooLarge(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 100, MaxHeaderSize: 4096}
	handler := RequestSizeMiddleware(cfg)(okHandler())

	req := httptest.NewRequest("POST", "/api/v1/safety/evaluate", strings.NewReader(strings.Repeat("x", 200)))
	req.Header.Set("Content-Length", "200")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", recorder.Code)
	}
}

func TestRequestSizeMiddleware_HeadersTooLarge(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1048576, MaxHeaderSize: 64}
	handler := RequestSizeMiddleware(cfg)(okHandler())

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Big-Header", strings.Repeat("a", 200))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("Expected 431, got %d", recorder.Code)
	}
}

func TestRequestSizeMiddleware_AllowsNormalRequests(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1048576, MaxHeaderSize: 4096}
	handler := RequestSizeMiddleware(cfg)(okHandler())

	req := httptest.NewRequest("POST", "/api/v1/safety/evaluate", strings.NewReader(`{"medications":[]}`))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", recorder.Code)
	}
}

func TestTokenCost(t *testing.T) {
	tests := []struct {
		path     string
		expected int64
	}{
		{"/health", 1},
		{"/metrics", 1},
		{"/api/v1/safety/evaluate", 10},
		{"/api/v1/medications/aspirina", 5},
		{"/api/v1/safety/knowledge", 5},
		{"/unknown", 5},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		if got := tokenCost(req); got != tt.expected {
			t.Errorf("tokenCost(%s) = %d, expected %d", tt.path, got, tt.expected)
		}
	}
}

func TestRateLimitHandler(t *testing.T) {
	handler := RateLimitHandler(okHandler())

	// A fresh client address gets its own bucket with 500 tokens; evaluate
	// requests cost 10 each, so the bucket drains after 50 requests.
	req := httptest.NewRequest("POST", "/api/v1/safety/evaluate", nil)
	req.RemoteAddr = "192.0.2.77:1000"

	for i := 0; i < 50; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after the bucket drained, got %d", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header on 429")
	}
}

func TestRateLimitBucketsAreIndependent(t *testing.T) {
	handler := RateLimitHandler(okHandler())

	drained := httptest.NewRequest("POST", "/api/v1/safety/evaluate", nil)
	drained.RemoteAddr = "192.0.2.78:1000"
	for i := 0; i < 51; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), drained)
	}

	other := httptest.NewRequest("GET", "/health", nil)
	other.RemoteAddr = "192.0.2.79:1000"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, other)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected a different client to be unaffected, got %d", recorder.Code)
	}
}
