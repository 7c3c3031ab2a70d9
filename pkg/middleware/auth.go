package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	apperrors "vintrek/pkg/errors"
	httputil "vintrek/pkg/http"
	"vintrek/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"

	claimsKey contextKey = "auth_claims"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(authHeader, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if len(tokenStr) > 7 && strings.EqualFold(tokenStr[:7], "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, apperrors.Unauthorized("Missing bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	}
	return claims, nil
}

// RequireRole guards a route with an HS256 bearer token whose role claim is
// one of roles. An empty secret rejects everything.
func RequireRole(secret string, log *logger.Logger, roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if secret == "" {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Authorization is not configured"))
				return
			}

			claims, err := ParseToken(r.Header.Get("Authorization"), secret)
			if err != nil {
				log.Warn("Rejected token",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, err)
				return
			}

			if !slices.Contains(roles, claims.Role) {
				_ = httputil.WriteError(w, apperrors.Forbidden("Insufficient role"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next(w, r.WithContext(ctx), ps)
		}
	}
}
