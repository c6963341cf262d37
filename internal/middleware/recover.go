package middleware

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"kukuri-chat/internal/web"
)

// Recoverer converts panics into the JSON 500 envelope instead of the
// plain-text body chi's recoverer writes.
func Recoverer(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
					web.ErrorWithDetails(w, http.StatusInternalServerError, "something went wrong", fmt.Sprint(rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
