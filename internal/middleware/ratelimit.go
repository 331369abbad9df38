// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// window holds the request times of one client inside the current window.
type window struct {
	mu    sync.Mutex
	times []time.Time
}

// RateLimiter limits mutating requests per client with a sliding window.
// Authenticated requests are keyed by user id, anonymous ones by IP.
// Every write fans out into several store and blob calls, so the limit
// sits in front of the composer rather than the reads.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
}

// NewRateLimiter allows limit requests per period for each client and
// starts a goroutine that drops idle clients. Call Stop to end it.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(max(period, time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background sweep.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow records a request for key. When the key is over its limit it
// returns false and how long until the oldest request leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.RLock()
	win, ok := rl.clients[key]
	rl.mu.RUnlock()
	if !ok {
		rl.mu.Lock()
		if win, ok = rl.clients[key]; !ok {
			win = &window{}
			rl.clients[key] = win
		}
		rl.mu.Unlock()
	}

	now := rl.now()
	cutoff := now.Add(-rl.period)

	win.mu.Lock()
	defer win.mu.Unlock()

	live := win.times[:0]
	for _, ts := range win.times {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	win.times = live

	if len(win.times) >= rl.limit {
		return false, win.times[0].Sub(cutoff)
	}
	win.times = append(win.times, now)
	return true, 0
}

// sweep removes clients with no request inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.period)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, win := range rl.clients {
		win.mu.Lock()
		idle := len(win.times) == 0 || !win.times[len(win.times)-1].After(cutoff)
		win.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects over-limit requests with 429 and a Retry-After
// header. It must run after Authenticate to key by user.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(clientKey(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if user := UserFromCtx(r.Context()); user != uuid.Nil {
		return "user:" + user.String()
	}
	return "ip:" + clientIP(r)
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
