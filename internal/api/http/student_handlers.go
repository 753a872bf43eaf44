package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/quiz"
	"github.com/mind-engage/learnportal/internal/rbac"
)

type attemptResp struct {
	Attempt quiz.Meta `json:"attempt"`
	View    quiz.View `json:"view"`
	// Question is the current question while the attempt is in progress.
	Question *content.PublicQuestion `json:"question,omitempty"`
}

func current(s *quiz.Session) *content.PublicQuestion {
	q, ok := s.Current()
	if !ok || s.Finished() {
		return nil
	}
	return &content.PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options}
}

// POST /tests/{testID}/attempts
func StartAttemptHandler(store content.Store, reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			fail(w, err)
			return
		}
		m, _ := reg.Start(t.Quiz(), quiz.Meta{
			Owner:    rbac.SubjectFromContext(r.Context()),
			TestID:   t.ID,
			CourseID: t.CourseID,
		})
		var q *content.PublicQuestion
		m, v, err := reg.Do(m.ID, "", func(s *quiz.Session) { q = current(s) })
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, attemptResp{Attempt: m, View: v, Question: q})
	}
}

// attemptOwner is the subject an attempt must belong to; roles allowed to
// see every attempt skip the check.
func attemptOwner(r *http.Request, checker *rbac.Checker) string {
	if checker.Has(rbac.RoleFromContext(r.Context()), "attempt:view-all") {
		return ""
	}
	return rbac.SubjectFromContext(r.Context())
}

// attemptAction runs act on the attempt named in the URL and writes the
// resulting view.
func attemptAction(reg *quiz.Registry, checker *rbac.Checker, act func(r *http.Request, s *quiz.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			q      *content.PublicQuestion
			actErr error
		)
		m, v, err := reg.Do(chi.URLParam(r, "attemptID"), attemptOwner(r, checker), func(s *quiz.Session) {
			if act != nil {
				actErr = act(r, s)
			}
			q = current(s)
		})
		if err == nil {
			err = actErr
		}
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attemptResp{Attempt: m, View: v, Question: q})
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(reg *quiz.Registry, checker *rbac.Checker) http.HandlerFunc {
	return attemptAction(reg, checker, nil)
}

// POST /attempts/{attemptID}/answer {"option": 2}
func AnswerHandler(reg *quiz.Registry, checker *rbac.Checker) http.HandlerFunc {
	return attemptAction(reg, checker, func(r *http.Request, s *quiz.Session) error {
		var req struct {
			Option *int `json:"option" validate:"required"`
		}
		if err := decode(r, &req); err != nil {
			return err
		}
		s.SelectAnswer(*req.Option)
		return nil
	})
}

// POST /attempts/{attemptID}/previous
func PreviousHandler(reg *quiz.Registry, checker *rbac.Checker) http.HandlerFunc {
	return attemptAction(reg, checker, func(_ *http.Request, s *quiz.Session) error {
		s.GoToPrevious()
		return nil
	})
}

// POST /attempts/{attemptID}/next. On the last question this finishes the
// attempt.
func NextHandler(reg *quiz.Registry, checker *rbac.Checker) http.HandlerFunc {
	return attemptAction(reg, checker, func(_ *http.Request, s *quiz.Session) error {
		s.Advance()
		return nil
	})
}

// POST /attempts/{attemptID}/submit
func SubmitHandler(reg *quiz.Registry, checker *rbac.Checker) http.HandlerFunc {
	return attemptAction(reg, checker, func(_ *http.Request, s *quiz.Session) error {
		s.Finish()
		return nil
	})
}

// DELETE /attempts/{attemptID}. Leaving an attempt discards it; an
// unfinished attempt records no result.
func AbandonAttemptHandler(reg *quiz.Registry, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Drop(chi.URLParam(r, "attemptID"), attemptOwner(r, checker)); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
