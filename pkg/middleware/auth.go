package middleware

import (
	"net/http"
	"strings"

	"kalamkart/pkg/policy"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// Authenticate requires a valid bearer JWT and puts its claims on the context.
func Authenticate(tokens TokenParser, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Not authorized, no token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("Rejected bearer token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("request_id", utils.GetRequestIDFromContext(r.Context())),
				)
				utils.ResponseUnauthorized(w, "Not authorized, token failed")
				return
			}

			ctx := utils.SetClaimsContext(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require lets the request through only when the caller's role holds capability.
// It must run after Authenticate.
func Require(capability policy.Capability, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := utils.GetClaimsFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !policy.Can(claims.Role, capability) {
				logger.Warn("Capability check failed",
					zap.String("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("capability", string(capability)),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
