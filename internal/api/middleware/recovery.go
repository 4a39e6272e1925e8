package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/plyr-settlement/internal/api/apierr"
	"github.com/mcoot/plyr-settlement/internal/middleware"
)

// Recovery answers a panicking API handler with INTERNAL_ERROR, echoing the
// caller's request id so the fault can be found in the server log
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With("surface", "api"), func(w http.ResponseWriter, r *http.Request, _ any) {
		if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
