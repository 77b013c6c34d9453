package auth

import (
	"net/http"
	"strings"

	"github.com/flick-business/flick-business/internal/platform/httpx"
	"github.com/flick-business/flick-business/internal/shared"
)

// RequireAuth verifies the bearer token and injects the caller's identity
// into the request context. Requests without a valid token get 401.
func RequireAuth(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			identity, err := tokens.Verify(raw)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
		})
	}
}
