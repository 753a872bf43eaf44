package http

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/rbac"
)

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// PUT /me/password. Only users kept in the store can change their password;
// the configured accounts are managed through the environment.
func ChangePasswordHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		u, err := store.GetUser(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			fail(w, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
			http.Error(w, "incorrect old password", http.StatusForbidden)
			return
		}
		if u.PasswordHash, err = hashPassword(req.NewPassword); err != nil {
			fail(w, err)
			return
		}
		if _, err := store.UpdateUser(r.Context(), u); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
