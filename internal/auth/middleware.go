package auth

import (
	"net/http"
	"strings"

	"github.com/demus23/myus-delivery-app-sub002/internal/platform/httpx"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// RequireUser rejects requests without a valid bearer token and stores
// the caller identity in the request context.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		identity, err := s.ParseToken(token)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin allows only administrator accounts through. Must be
// mounted inside RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := shared.IdentityFromContext(r.Context())
		if identity == nil || !identity.IsAdmin {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
