package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"retroboard-backend/pkg/auth"
	"retroboard-backend/pkg/common"
)

// Throttle enforces the per-user request budget against the shared
// DynamoDB window, so the limit holds across Lambda instances. It must
// run after Authenticate; unauthenticated requests pass through and are
// caught by the in-process IP limiter instead.
func Throttle(limiter *auth.DistributedRateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			// Allow fails open on store errors
			allowed, err := limiter.Allow(r.Context(), actor.UserHash)
			if err != nil && logger != nil {
				logger.Warn("distributed rate limiter degraded", zap.Error(err))
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "User rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
