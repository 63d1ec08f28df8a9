package middleware

import (
	"crypto/subtle"
	"net/http"

	"bookmyseat/pkg/utils"

	"go.uber.org/zap"
)

const AdminKeyHeader = "X-Admin-Key"

// Admin guards catalog and reporting routes with a shared key. An empty
// configured key locks the routes entirely.
func Admin(adminKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(AdminKeyHeader)

			if adminKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(adminKey)) != 1 {
				logger.Warn("Admin check: rejected",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
