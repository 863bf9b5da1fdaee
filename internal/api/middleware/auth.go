package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal stored by
// AuthMiddleware for the current request.
func PrincipalFromContext(ctx context.Context) (customer.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(customer.Principal)
	return p, ok
}

// ContextWithPrincipal returns a copy of ctx carrying the given principal.
func ContextWithPrincipal(ctx context.Context, p customer.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		// Local development mode: every request runs as an anonymous admin.
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := ContextWithPrincipal(r.Context(), customer.Principal{Roles: []string{customer.RoleAdmin}})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authenticate(r, cfg.JWTSecret, logger)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintf(w, `{"status":401,"message":"Unauthorized","internalCode":%q}`, apperrors.CodeUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func authenticate(r *http.Request, secret string, logger *slog.Logger) (customer.Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("AuthMiddleware: Missing Authorization header")
		return customer.Principal{}, apperrors.ErrUnauthorized
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logger.Warn("AuthMiddleware: Invalid Authorization header format")
		return customer.Principal{}, apperrors.ErrUnauthorized
	}
	tokenString := parts[1]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			logger.Warn("AuthMiddleware: Unexpected signing method")
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		logger.Warn("AuthMiddleware: Invalid token", "error", err)
		return customer.Principal{}, apperrors.ErrUnauthorized
	}

	principal, err := principalFromClaims(token.Claims)
	if err != nil {
		logger.Warn("AuthMiddleware: Token claims missing principal data", "error", err)
		return customer.Principal{}, apperrors.ErrUnauthorized
	}

	logger.Debug("AuthMiddleware: Authenticated request", "customerID", principal.CustomerID)
	return principal, nil
}

func principalFromClaims(claims jwt.Claims) (customer.Principal, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return customer.Principal{}, fmt.Errorf("missing sub claim")
	}
	customerID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return customer.Principal{}, fmt.Errorf("invalid sub claim: %w", err)
	}

	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return customer.Principal{}, fmt.Errorf("unexpected claims type %T", claims)
	}

	roles := []string{customer.RoleUser}
	if raw, ok := mapClaims["roles"].([]interface{}); ok {
		roles = roles[:0]
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	return customer.Principal{CustomerID: customerID, Roles: roles}, nil
}
