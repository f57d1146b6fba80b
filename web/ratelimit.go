package web

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"football-analytics/logger"
	"football-analytics/pkg/common"
)

// RateLimiter 固定窗口的按 IP 限流器
type RateLimiter struct {
	windows map[string]*windowEntry
	mu      sync.Mutex
	max     int
	window  time.Duration
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		windows: make(map[string]*windowEntry),
		max:     max,
		window:  window,
	}

	// 启动清理协程
	go l.cleanupLoop()

	return l
}

// Allow 记录一次请求并判断是否超出窗口配额
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	entry, exists := l.windows[key]
	if !exists || now.After(entry.resetAt) {
		l.windows[key] = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	entry.count++
	return entry.count <= l.max
}

// Middleware 限流中间件，超出配额返回 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r); !l.Allow(ip) {
			logger.Printf("Request rejected: %v (ip=%s path=%s)", common.ErrRateLimitExceeded, ip, r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, APIResponse{
				Success: false,
				Error:   "Too many requests from this IP",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupLoop 定期清理过期窗口
func (l *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, entry := range l.windows {
			if now.After(entry.resetAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// clientIP 提取客户端 IP，优先取代理头
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
