package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/plyr-settlement/internal/api/apierr"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
)

type contextKey string

const callerContextKey contextKey = "caller"

// Auth creates authentication middleware. The verified token subject becomes
// the caller of every operation the request performs.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			caller, err := authService.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), callerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetCaller returns the authenticated caller from the request context
func GetCaller(ctx context.Context) (model.Address, bool) {
	caller, ok := ctx.Value(callerContextKey).(model.Address)
	return caller, ok
}

// MustGetCaller returns the authenticated caller or panics
func MustGetCaller(ctx context.Context) model.Address {
	caller, ok := GetCaller(ctx)
	if !ok {
		panic("no caller in context - auth middleware not applied?")
	}
	return caller
}
