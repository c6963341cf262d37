package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	userID int
	err    error
}

func (s stubVerifier) Verify(string) (int, error) {
	return s.userID, s.err
}

func echoUserID(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		require.Equal(t, 42, id)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMissingToken(t *testing.T) {
	auth := NewAuth(stubVerifier{userID: 42})

	for _, header := range []string{"", "Bearer", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		auth.Handle(echoUserID(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	auth := NewAuth(stubVerifier{err: errors.New("bad signature")})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()

	auth.Handle(echoUserID(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthValidTokenInjectsUserID(t *testing.T) {
	auth := NewAuth(stubVerifier{userID: 42})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	auth.Handle(echoUserID(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
