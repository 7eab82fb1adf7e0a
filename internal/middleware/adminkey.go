package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AdminKeyHeader carries the static shared secret for admin operations.
const AdminKeyHeader = "X-API-Key"

// AdminKey creates middleware requiring the admin shared secret. This scheme
// is independent of the end-user bearer tokens: a valid user token does not
// grant admin access.
func AdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AdminKeyHeader)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				writeAuthError(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
