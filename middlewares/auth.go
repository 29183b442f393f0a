package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/config"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

type Claims struct {
	UserID   uuid.UUID     `json:"user_id"`
	Username string        `json:"username"`
	Roles    []models.Role `json:"roles"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role models.Role) bool {
	return models.HasRole(c.Roles, role)
}

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token. Protected
// resources answer unauthenticated callers with 403, never 401.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractBearerToken(r)
		if err != nil {
			utils.WriteError(w, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err))
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return config.SecretKey, nil
		})
		if err != nil || !token.Valid {
			utils.WriteError(w, fmt.Errorf("%w: invalid token", models.ErrUnauthenticated))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetAuthenticatedUser(r *http.Request) (*Claims, error) {
	claims, ok := r.Context().Value(userContextKey).(*Claims)
	if !ok {
		return nil, fmt.Errorf("%w: no user in context", models.ErrUnauthenticated)
	}
	return claims, nil
}

// SetAuthenticatedUser injects claims into a request context; used by tests
// that exercise handlers without the full middleware stack.
func SetAuthenticatedUser(r *http.Request, claims *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, claims))
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}

// RequireRole is the guard composed ahead of handler bodies that need a role
// the route itself cannot express.
func RequireRole(r *http.Request, role models.Role) (*Claims, error) {
	claims, err := GetAuthenticatedUser(r)
	if err != nil {
		return nil, err
	}
	if !claims.HasRole(role) {
		return nil, fmt.Errorf("%w: %s role required", models.ErrPermissionDenied, role)
	}
	return claims, nil
}

// RoleBasedMiddleware gates a subrouter to callers holding any allowed role.
func RoleBasedMiddleware(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool)
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetAuthenticatedUser(r)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			for _, userRole := range claims.Roles {
				if allowed[userRole] {
					next.ServeHTTP(w, r)
					return
				}
			}

			utils.WriteError(w, fmt.Errorf("%w: insufficient role", models.ErrPermissionDenied))
		})
	}
}
