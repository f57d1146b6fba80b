package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	if !limiter.Allow("1.2.3.4") {
		t.Error("Expected first request to be allowed")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Error("Expected second request to be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Error("Expected third request to be rejected")
	}

	// 其他 IP 不受影响
	if !limiter.Allow("5.6.7.8") {
		t.Error("Expected different IP to be allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	if !limiter.Allow("1.2.3.4") {
		t.Error("Expected first request to be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Error("Expected second request to be rejected")
	}

	time.Sleep(30 * time.Millisecond)

	if !limiter.Allow("1.2.3.4") {
		t.Error("Expected request after window reset to be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/matches", nil)
	req.RemoteAddr = "1.2.3.4:5555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}

	var response APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Success {
		t.Error("Expected success to be false")
	}
	if response.Error != "Too many requests from this IP" {
		t.Errorf("Unexpected error message: '%s'", response.Error)
	}
}

func TestClientIPFromForwardedHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := clientIP(req); ip != "203.0.113.7" {
		t.Errorf("Expected forwarded IP, got '%s'", ip)
	}

	req.Header.Del("X-Forwarded-For")
	if ip := clientIP(req); ip != "10.0.0.1" {
		t.Errorf("Expected remote address host, got '%s'", ip)
	}
}
