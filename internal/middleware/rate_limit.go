package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimit returns middleware enforcing a per-client per-minute request
// limit backed by Redis. Counters use a fixed one-minute window keyed by
// client IP. Redis failures fail open.
func RateLimit(rdb *redis.Client, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(clientIP(r))

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := rdb.Expire(r.Context(), key, time.Minute).Err(); err != nil {
					slog.Error("rate limit expire failed", "error", err, "key", key)
				}
			}

			if count > int64(perMinute) {
				slog.Debug("rate limited", "key", key, "count", count, "limit", perMinute)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"response": "Too many requests. Please wait a moment.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s:%d", ip, time.Now().Unix()/60)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// Proxy chains append hops; the originating client is the first
		// entry.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
