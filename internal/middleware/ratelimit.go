package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/GregMSThompson/moneylog/pkg/logger"
)

type rateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perSecond requests on average with bursts up to
// burst. A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *rateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

func (m *rateLimiter) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow() {
			logger.FromContext(r.Context()).Warn("rate limit exceeded", "remote_addr", r.RemoteAddr)
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
