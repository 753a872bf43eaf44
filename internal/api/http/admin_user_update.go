package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/learnportal/internal/content"
)

type updateUserRoleReq struct {
	Role string `json:"role" validate:"required,oneof=admin student"`
}

// PUT /users/{userID}/role. The last stored admin cannot be demoted.
func AdminUpdateUserRoleHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRoleReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		u, err := store.GetUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			fail(w, err)
			return
		}
		role := content.Role(req.Role)
		if u.Role == content.RoleAdmin && role != content.RoleAdmin {
			us, err := store.ListUsers(r.Context())
			if err != nil {
				fail(w, err)
				return
			}
			admins := 0
			for _, x := range us {
				if x.Role == content.RoleAdmin {
					admins++
				}
			}
			if admins <= 1 {
				http.Error(w, "cannot demote the last admin", http.StatusBadRequest)
				return
			}
		}
		u.Role, u.PasswordHash = role, ""
		if _, err := store.UpdateUser(r.Context(), u); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
