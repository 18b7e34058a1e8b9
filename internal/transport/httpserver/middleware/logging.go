package middleware

import (
	"net/http"

	"community-grocery-go/pkg/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger stores a logger tagged with the request id in the request context.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scoped := log.With("request_id", chimw.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(logger.IntoContext(r.Context(), scoped)))
		})
	}
}
