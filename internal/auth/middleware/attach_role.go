package auth

import (
	"errors"
	"net/http"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/rbac"
)

// AttachRoleFromStore replaces the role claim with the stored user's current
// role. Subjects that are not stored users (the configured accounts) keep
// their claim; a token for a deleted user is refused.
func AttachRoleFromStore(users content.Store, builtin ...string) func(http.Handler) http.Handler {
	fixed := map[string]bool{}
	for _, b := range builtin {
		fixed[b] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			if fixed[sub] {
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.GetUser(ctx, sub)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, string(u.Role))))
			case errors.Is(err, content.ErrNotFound):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "user lookup failed", http.StatusInternalServerError)
			}
		})
	}
}
