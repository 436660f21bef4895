package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"promptbuilder/pkg/auth"
	"promptbuilder/pkg/common"
)

// Headers set by the Lambda entry point after API Gateway has validated the JWT
const (
	HeaderGatewayAuthorized = "X-API-Gateway-Authorized"
	HeaderUserID            = "X-User-ID"
	HeaderUserEmail         = "X-User-Email"
	HeaderUserRoles         = "X-User-Roles"
)

// AuthConfig configures Authenticate
type AuthConfig struct {
	Validator *auth.JWTValidator
	// Requests per minute; zero disables the limiter
	IPRateLimit   int
	UserRateLimit int
	// TrustGateway accepts the user headers injected behind API Gateway
	TrustGateway bool
	Logger       *zap.Logger
}

// Authenticate validates the caller and attaches it to the request context.
// Behind API Gateway the identity headers are trusted; everywhere else a
// bearer token is required.
func Authenticate(cfg AuthConfig) func(next http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var ipLimiter *auth.IPRateLimiter
	if cfg.IPRateLimit > 0 {
		ipLimiter = auth.NewIPRateLimiter(cfg.IPRateLimit)
	}
	var userLimiter *auth.UserRateLimiter
	if cfg.UserRateLimit > 0 {
		userLimiter = auth.NewUserRateLimiter(cfg.UserRateLimit)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			if ipLimiter != nil {
				allowed, err := ipLimiter.Allow(r.Context(), clientIP)
				if err != nil {
					logger.Error("Rate limiter error", zap.Error(err))
					respondWithError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "Internal server error")
					return
				}
				if !allowed {
					respondWithError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
					return
				}
			}

			var user *auth.UserContext
			if cfg.TrustGateway && r.Header.Get(HeaderGatewayAuthorized) == "true" {
				user = gatewayUser(r)
				if user == nil {
					respondUnauthorized(w, "Missing user context from API Gateway")
					return
				}
			} else {
				token := extractToken(r)
				if token == "" {
					respondUnauthorized(w, "Missing authentication token")
					return
				}

				claims, err := cfg.Validator.ValidateToken(token)
				if err != nil {
					logger.Warn("Invalid token",
						zap.Error(err),
						zap.String("ip", clientIP),
						zap.String("path", r.URL.Path),
					)

					switch {
					case errors.Is(err, auth.ErrExpiredToken):
						respondUnauthorized(w, "Token has expired")
					case errors.Is(err, auth.ErrInvalidSignature):
						respondUnauthorized(w, "Invalid token signature")
					default:
						respondUnauthorized(w, "Invalid token")
					}
					return
				}
				user = &auth.UserContext{
					UserID: claims.UserID,
					Email:  claims.Email,
					Roles:  claims.Roles,
				}
			}

			if userLimiter != nil {
				allowed, err := userLimiter.Allow(r.Context(), user.UserID)
				if err != nil {
					logger.Error("User rate limiter error", zap.Error(err))
					respondWithError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "Internal server error")
					return
				}
				if !allowed {
					respondWithError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "User rate limit exceeded")
					return
				}
			}

			logger.Debug("Request authenticated",
				zap.String("user_id", user.UserID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

func gatewayUser(r *http.Request) *auth.UserContext {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		return nil
	}

	roles := []string{"authenticated"}
	if raw := r.Header.Get(HeaderUserRoles); raw != "" {
		roles = strings.Split(raw, ",")
	}
	return &auth.UserContext{
		UserID: userID,
		Email:  r.Header.Get(HeaderUserEmail),
		Roles:  roles,
	}
}

// extractToken extracts the JWT token from multiple sources
func extractToken(r *http.Request) string {
	// Check Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return authHeader
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	common.RespondError(w, status, code, message)
}

// RequireRole creates middleware that requires one of the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.GetUserFromContext(r.Context())
			if !ok {
				respondUnauthorized(w, "Unauthorized")
				return
			}

			for _, role := range roles {
				if user.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithError(w, http.StatusForbidden, common.StandardErrorCodes.Forbidden, "Insufficient permissions")
		})
	}
}
