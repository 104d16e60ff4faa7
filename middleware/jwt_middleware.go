package middleware

import (
	"context"
	"net/http"
	"strings"

	"dine-server/utils/errors"
)

// TokenValidator resolves a bearer access token to a user id. The auth
// service implements it; injecting the interface keeps the middleware free
// of any token-format knowledge.
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

type contextKey string

const userIDKey contextKey = "userID"

// UserIDFromContext returns the validated caller identity set by JWTMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

// JWTMiddleware guards protected routes: every request must carry a valid
// bearer access token before reaching business logic.
func JWTMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, errors.ErrUnauthorized)
				return
			}

			userID, err := validator.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				WriteError(w, errors.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
