package middleware

import (
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"retroboard-backend/infrastructure/config"
	"retroboard-backend/pkg/auth"
	"retroboard-backend/pkg/common"
)

// Authenticate creates the board-token authentication middleware. Tokens
// carry the caller's opaque user hash, display alias, and an explicit
// admin capability; the engine never derives admin from anything else.
func Authenticate() func(next http.Handler) http.Handler {
	cfg, err := config.LoadConfig()
	if err != nil {
		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			jwtSecret = "development-secret-change-in-production"
		}
		cfg = &config.Config{
			JWTSecret: jwtSecret,
			JWTIssuer: "retroboard-backend",
		}
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				common.RespondError(w, http.StatusUnauthorized, "AUTH_UNAVAILABLE", "Authentication system error")
			})
		}
	}

	return AuthenticateWithValidator(validator, nil)
}

// AuthenticateWithValidator creates authentication middleware around an
// explicit validator. A nil logger disables auth failure logging.
func AuthenticateWithValidator(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(100)
	userLimiter := auth.NewUserRateLimiter(200)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, _ := ipLimiter.Allow(r.Context(), clientIP)
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			token := extractToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "MISSING_TOKEN", "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("token rejected",
						zap.Error(err),
						zap.String("ip", clientIP),
						zap.String("path", r.URL.Path))
				}
				switch err {
				case auth.ErrExpiredToken:
					common.RespondError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
				case auth.ErrInvalidSignature:
					common.RespondError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid token signature")
				default:
					common.RespondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
				}
				return
			}

			allowed, _ = userLimiter.Allow(r.Context(), claims.UserHash)
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "User rate limit exceeded")
				return
			}

			actor := common.Actor{
				UserHash: claims.UserHash,
				Alias:    claims.Alias,
				Admin:    claims.Admin,
			}
			ctx := common.WithActor(r.Context(), actor)
			if claims.BoardID != "" {
				ctx = common.WithBoardID(ctx, claims.BoardID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token does not carry the admin
// capability. Board teardown endpoints sit behind this.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromRequest(r)
			if !ok {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Unauthorized")
				return
			}
			if !actor.Admin {
				common.RespondError(w, http.StatusForbidden, "ADMIN_REQUIRED", "Admin capability required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromRequest reassembles the caller identity stored by Authenticate
func ActorFromRequest(r *http.Request) (common.Actor, bool) {
	userHash, ok := common.GetUserHash(r.Context())
	if !ok || userHash == "" {
		return common.Actor{}, false
	}
	alias, _ := common.GetUserAlias(r.Context())
	return common.Actor{
		UserHash: userHash,
		Alias:    alias,
		Admin:    common.IsAdmin(r.Context()),
	}, true
}

// extractToken pulls the token from the Authorization header or, for
// WebSocket upgrade requests that cannot set headers, the query string
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return authHeader
	}

	return r.URL.Query().Get("token")
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
