package middleware

import (
	"net/http"
	"strings"

	"bookmyseat/pkg/utils"

	"go.uber.org/zap"
)

const (
	HolderHeader   = "X-Holder-ID"
	maxHolderIDLen = 128
)

// RequireHolder takes the holder identity asserted by the upstream identity
// provider and puts it on the request context. Requests without one are
// rejected with 401.
func RequireHolder(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			holder := strings.TrimSpace(r.Header.Get(HolderHeader))
			if holder == "" {
				utils.ResponseUnauthorized(w, "Missing holder identity")
				return
			}
			if len(holder) > maxHolderIDLen {
				logger.Warn("Holder identity too long",
					zap.Int("length", len(holder)),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid holder identity")
				return
			}

			ctx := utils.SetHolderContext(r.Context(), holder)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
