package http

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/quiz"
	"github.com/mind-engage/learnportal/internal/rbac"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

// GET /results?test_id=...&user_id=...
// Roles with attempt:view-all may filter by any user; everyone else only sees
// their own results (user_id is forced to the subject).
func ListResultsHandler(store content.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		f := content.ResultFilter{
			TestID: strings.TrimSpace(r.URL.Query().Get("test_id")),
			UserID: strings.TrimSpace(r.URL.Query().Get("user_id")),
		}
		if !checker.Has(role, "attempt:view-all") {
			f.UserID = sub
		}
		list, err := store.ListResults(r.Context(), f)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// RecordResult stores the result of every finished attempt and appends an
// AttemptFinished event.
func RecordResult(store content.Store, events syncx.Log) quiz.FinishFunc {
	return func(m quiz.Meta, answers quiz.Answers, rep quiz.Report) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res, err := store.SaveResult(ctx, content.TestResult{
			UserID:         m.Owner,
			TestID:         m.TestID,
			CourseID:       m.CourseID,
			Score:          rep.Percentage,
			CorrectCount:   rep.CorrectCount,
			TotalQuestions: rep.Total,
			Passed:         rep.Passed,
			Answers:        answers.Slice(rep.Total),
		})
		if err != nil {
			log.Printf("save result of attempt %s: %v", m.ID, err)
			return
		}
		if err := events.Append(ctx, syncx.NewEvent(syncx.TypeAttemptFinished, m.ID, res)); err != nil {
			log.Printf("event %s: %v", syncx.TypeAttemptFinished, err)
		}
	}
}
