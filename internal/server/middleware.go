package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/shared"
)

// RequestLogger returns [Middleware] that logs each inbound request with a
// generated request ID.
//
// The callback listener only ever serves a handful of requests, so there
// is no sampling or level filtering here.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.GenerateID()
			logger.Info("request", "id", id, "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
