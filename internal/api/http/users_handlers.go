package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/learnportal/internal/content"
)

const bcryptCost = 12

type userRow struct {
	Username string `json:"username" validate:"required,notblank"`
	Role     string `json:"role" validate:"omitempty,oneof=admin student"`
	Password string `json:"password,omitempty"`
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

func ListUsersHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := content.Role(r.URL.Query().Get("role"))
		us, err := store.ListUsers(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		out := make([]content.User, 0, len(us))
		for _, u := range us {
			if role != "" && u.Role != role {
				continue
			}
			u.PasswordHash = ""
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateUserHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRow
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		if req.Password == "" {
			http.Error(w, "password required", http.StatusBadRequest)
			return
		}
		u, err := createUser(r.Context(), store, req)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func createUser(ctx context.Context, store content.Store, row userRow) (content.User, error) {
	if row.Role == "" {
		row.Role = string(content.RoleStudent)
	}
	hash, err := hashPassword(row.Password)
	if err != nil {
		return content.User{}, err
	}
	u, err := store.CreateUser(ctx, content.User{Username: row.Username, Role: content.Role(row.Role), PasswordHash: hash})
	u.PasswordHash = ""
	return u, err
}

// BulkUpsertUsersHandler accepts a multipart file (CSV or JSON) or a raw JSON
// array. Existing usernames get their role, and password when given, updated.
func BulkUpsertUsersHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			b, err := io.ReadAll(f)
			if err != nil {
				fail(w, err)
				return
			}
			trimmed := strings.TrimSpace(string(b))
			if strings.HasPrefix(trimmed, "[") {
				if err := json.Unmarshal(b, &rows); err != nil {
					http.Error(w, "bad json", http.StatusBadRequest)
					return
				}
			} else if rows, err = parseCSV(strings.NewReader(trimmed)); err != nil {
				http.Error(w, "bad csv: "+err.Error(), http.StatusBadRequest)
				return
			}
		} else if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array or multipart file", http.StatusBadRequest)
			return
		}
		for i, row := range rows {
			if err := validate.Struct(row); err != nil {
				http.Error(w, fmt.Sprintf("row %d: %v", i+1, err), http.StatusBadRequest)
				return
			}
		}
		ins, upd, err := upsertUsers(r.Context(), store, rows)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"inserted": ins, "updated": upd})
	}
}

func parseCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["username"]; !ok {
		return nil, errors.New("missing column: username")
	}
	col := func(rec []string, name string) string {
		if i, ok := idx[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	var rows []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, userRow{
			Username: col(rec, "username"),
			Role:     strings.ToLower(col(rec, "role")),
			Password: col(rec, "password"),
		})
	}
	return rows, nil
}

func upsertUsers(ctx context.Context, store content.Store, rows []userRow) (inserted, updated int, err error) {
	for _, row := range rows {
		u, err := store.GetUserByUsername(ctx, row.Username)
		switch {
		case errors.Is(err, content.ErrNotFound):
			if row.Password == "" {
				return inserted, updated, fmt.Errorf("%w: password required for new user %s", content.ErrInvalid, row.Username)
			}
			if _, err := createUser(ctx, store, row); err != nil {
				return inserted, updated, err
			}
			inserted++
		case err != nil:
			return inserted, updated, err
		default:
			if row.Role != "" {
				u.Role = content.Role(row.Role)
			}
			u.PasswordHash = ""
			if row.Password != "" {
				if u.PasswordHash, err = hashPassword(row.Password); err != nil {
					return inserted, updated, err
				}
			}
			if _, err := store.UpdateUser(ctx, u); err != nil {
				return inserted, updated, err
			}
			updated++
		}
	}
	return inserted, updated, nil
}

func DeleteUserHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
