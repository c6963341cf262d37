package middleware

import (
	"context"
	"net/http"
	"strings"

	"kukuri-chat/internal/web"
)

type contextKey string

// UserKey is where the authenticated caller's id lives in the request
// context.
const UserKey contextKey = "user_id"

// TokenVerifier is what the middleware needs from the token package.
// The interface keeps this package decoupled from it.
type TokenVerifier interface {
	Verify(tokenString string) (int, error)
}

type Auth struct {
	verifier TokenVerifier
}

func NewAuth(v TokenVerifier) *Auth {
	return &Auth{verifier: v}
}

// Handle gates every endpoint except register and login. An absent
// token is a 401; a present but invalid or expired one is a 403.
func (a *Auth) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			web.Error(w, http.StatusUnauthorized, "missing authentication token")
			return
		}

		userID, err := a.verifier.Verify(tokenString)
		if err != nil {
			web.Error(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the authenticated caller's id from a request context.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserKey).(int)
	return id, ok
}
