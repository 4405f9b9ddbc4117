package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Per-client budget. Uploads fan out to the external classifier for OCR and
// aircraft classification, so the cap also bounds load on that service.
const (
	requestsPerSecond = 2
	burstSize         = 10
	clientIdleTTL     = 10 * time.Minute
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	rateLimitClients = make(map[string]*rateLimitClient)
	rateLimitMutex   sync.Mutex

	whitelistedIPs = map[string]bool{
		"127.0.0.1": true, // local tooling
	}
)

func getLimiter(ip string) *rate.Limiter {
	rateLimitMutex.Lock()
	defer rateLimitMutex.Unlock()

	now := time.Now()
	if c, exists := rateLimitClients[ip]; exists {
		c.lastSeen = now
		return c.limiter
	}

	// Evict clients that have gone quiet so the map stays bounded.
	for addr, c := range rateLimitClients {
		if now.Sub(c.lastSeen) > clientIdleTTL {
			delete(rateLimitClients, addr)
		}
	}

	c := &rateLimitClient{
		limiter:  rate.NewLimiter(requestsPerSecond, burstSize),
		lastSeen: now,
	}
	rateLimitClients[ip] = c
	return c.limiter
}

// RateLimitMiddleware bounds per-IP request rates.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if whitelistedIPs[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !getLimiter(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
