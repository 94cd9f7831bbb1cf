package http

import (
	"net/http"
	"strings"

	"github.com/Flarenzy/node-inventory/internal/auth"
)

func publicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" || strings.HasPrefix(path, "/swagger/")
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	if a.authenticator == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			a.writeJSON(w, r, http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
			return
		}

		principal, err := a.authenticator.Authenticate(ctx, strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			a.Logger.DebugContext(ctx, "rejected bearer token", "err", err.Error())
			a.writeJSON(w, r, http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}
		if !principal.HasRole(a.requiredRole) {
			a.Logger.InfoContext(ctx, "caller lacks required role", "subject", principal.Subject, "role", a.requiredRole)
			a.writeJSON(w, r, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, principal)))
	})
}
