package middleware

import (
	"context"
	"net/http"

	"github.com/pgroom/pgroom-backend/api/responses"
	"github.com/pgroom/pgroom-backend/pkg/auth"
	pkgerrors "github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/logger"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified claims placed by RequireAuth.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// ContextWithClaims injects claims directly, bypassing token verification.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// RequireAuth verifies the bearer token and stashes its claims in the
// request context.
func RequireAuth(verifier *auth.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, err := auth.BearerFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			claims, err := verifier.ParseAccessToken(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id": claims.UserID,
					"role":    claims.Role,
				})
			}
			ctx = context.WithValue(ctx, claimsKey{}, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on an exact role match. Must run after
// RequireAuth.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims := ClaimsFromContext(ctx)
			if claims == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if claims.Role != role {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
