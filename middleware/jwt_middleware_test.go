package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "dine-server/utils/errors"
)

type stubValidator struct {
	token  string
	userID string
}

func (v *stubValidator) ValidateAccessToken(token string) (string, error) {
	if token == v.token {
		return v.userID, nil
	}
	return "", apierrors.ErrUnauthorized
}

func newGuardedHandler() (http.Handler, *string) {
	var seenUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserIDFromContext(r.Context()); ok {
			seenUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
	validator := &stubValidator{token: "good-token", userID: "user-1"}
	return JWTMiddleware(validator)(inner), &seenUserID
}

func TestJWTMiddlewarePassesValidToken(t *testing.T) {
	handler, seen := newGuardedHandler()

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", *seen)
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	handler, seen := newGuardedHandler()

	req := httptest.NewRequest("GET", "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, *seen)
}

func TestJWTMiddlewareRejectsBadToken(t *testing.T) {
	handler, _ := newGuardedHandler()

	for _, header := range []string{
		"Bearer forged-token",
		"Basic good-token",
		"good-token",
	} {
		req := httptest.NewRequest("GET", "/users", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestJWTMiddlewareLetsPreflightThrough(t *testing.T) {
	handler, _ := newGuardedHandler()

	req := httptest.NewRequest("OPTIONS", "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
