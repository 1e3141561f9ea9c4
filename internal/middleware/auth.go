package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hallday/hallday-api/internal/pkg/jwt"
	"github.com/hallday/hallday-api/internal/pkg/response"
)

type contextKey string

const (
	AdminIDKey contextKey = "admin_id"
	LoginIDKey contextKey = "login_id"
	TokenIDKey contextKey = "token_id"
)

// RevocationChecker reports whether a session token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth returns middleware that validates the admin session token. The token
// is read from the access_token cookie set at sign-in, with an Authorization
// Bearer header accepted as a fallback.
func Auth(jwtService *jwt.Service, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				response.Unauthorized(w, "Missing session token")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Session expired")
				} else {
					response.Unauthorized(w, "Invalid session token")
				}
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					response.InternalError(w)
					return
				}
				if isRevoked {
					response.Unauthorized(w, "Session revoked")
					return
				}
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, claims.AdminID)
			ctx = context.WithValue(ctx, LoginIDKey, claims.LoginID)
			ctx = context.WithValue(ctx, TokenIDKey, claims.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// GetAdminID extracts the authenticated admin id from context
func GetAdminID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(AdminIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetLoginID extracts the admin login id from context
func GetLoginID(ctx context.Context) string {
	if id, ok := ctx.Value(LoginIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTokenID extracts the session token id from context
func GetTokenID(ctx context.Context) string {
	if id, ok := ctx.Value(TokenIDKey).(string); ok {
		return id
	}
	return ""
}
