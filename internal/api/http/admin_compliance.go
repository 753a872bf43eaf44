package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/learnportal/internal/content"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

// -----------------------------
// Admin: data export & audit
// -----------------------------

// HandleAdminUserExport returns a stored user and all their test results as a
// downloadable JSON file.
func HandleAdminUserExport(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.GetUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			fail(w, err)
			return
		}
		results, err := store.ListResults(r.Context(), content.ResultFilter{UserID: u.ID})
		if err != nil {
			fail(w, err)
			return
		}
		u.PasswordHash = ""
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "user_"+u.ID+".json"))
		writeJSON(w, http.StatusOK, map[string]any{"user": u, "results": results})
	}
}

// HandleAdminEvents pages through the event log: GET /events?since=SEQ&limit=N&type=T
func HandleAdminEvents(events syncx.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, _ := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		typ := strings.TrimSpace(r.URL.Query().Get("type"))

		evs, err := events.Since(r.Context(), since, limit)
		if err != nil {
			fail(w, err)
			return
		}
		next := since
		out := make([]syncx.Event, 0, len(evs))
		for _, e := range evs {
			next = e.Seq
			if typ == "" || e.Type == typ {
				out = append(out, e)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": out, "next": next})
	}
}
