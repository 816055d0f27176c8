package middleware

import (
	"net/http"

	pkgobs "axon-backend/pkg/observability"
)

// Tracing opens an X-Ray segment per request when tracer is enabled
func Tracing(tracer *pkgobs.Tracer) func(next http.Handler) http.Handler {
	return tracer.Handler
}
