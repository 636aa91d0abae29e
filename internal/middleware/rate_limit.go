package middleware

import (
	"net/http"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig // nil trusts no proxy headers
}

// DefaultAuthRateLimit returns default rate limit config for auth endpoints (5 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 5,
	}
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "rate limit exceeded, try again later")
}

// clientIPKey keys on the client address, honouring forwarding headers only from trusted proxies
func clientIPKey(ipConfig *pkghttp.IPConfig) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		return pkghttp.ExtractClientIP(r, ipConfig), nil
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(clientIPKey(config.IPConfig)),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// RateLimitByUser limits requests per signed-in user, falling back to the client IP
// for anonymous requests. Must run after the auth middleware.
func RateLimitByUser(config RateLimitConfig) func(next http.Handler) http.Handler {
	byIP := clientIPKey(config.IPConfig)
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if claims := auth.GetUserFromContext(r); claims != nil {
				return "user:" + claims.UserID, nil
			}
			ip, err := byIP(r)
			return "ip:" + ip, err
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}
