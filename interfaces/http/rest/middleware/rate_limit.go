package middleware

import (
	"net/http"

	"axon-backend/pkg/auth"
	"axon-backend/pkg/common"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

// RateLimit applies limiter per caller. Anonymous callers share the
// remote address as their key. Limiter errors fail open.
func RateLimit(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := common.GetUserID(r.Context())
			if !ok {
				key = r.RemoteAddr
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter error", zap.Error(err), zap.String("key", key))
			}
			if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitError("Too many requests, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
