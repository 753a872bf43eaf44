package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/gift"
	"github.com/mind-engage/learnportal/internal/rbac"
	"github.com/mind-engage/learnportal/internal/storage"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

// testUpload is the form (or JSON body) of a test upload.
type testUpload struct {
	Title        string `json:"title" validate:"required,notblank"`
	Gift         string `json:"gift" validate:"required"`
	TimeLimit    *int   `json:"time_limit" validate:"omitempty,gt=0"`
	PassingScore *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
}

// readUpload accepts multipart (file + title, time_limit, passing_score) or
// a JSON body carrying the markup inline.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (testUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var up testUpload
		return up, decode(r, &up)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return testUpload{}, fmt.Errorf("%w: file required", content.ErrInvalid)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return testUpload{}, err
	}
	up := testUpload{Title: strings.TrimSpace(r.FormValue("title")), Gift: string(b)}
	if up.TimeLimit, err = optInt(r.FormValue("time_limit")); err != nil {
		return testUpload{}, fmt.Errorf("%w: time_limit must be a number", content.ErrInvalid)
	}
	if up.PassingScore, err = optInt(r.FormValue("passing_score")); err != nil {
		return testUpload{}, fmt.Errorf("%w: passing_score must be a number", content.ErrInvalid)
	}
	if strings.TrimSpace(up.Gift) == "" {
		return testUpload{}, gift.ErrNoQuestions
	}
	return up, validate.Struct(up)
}

// POST /courses/{courseID}/tests
func UploadTestHandler(svc *content.TestService, bs storage.BlobStore, events syncx.Log, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := readUpload(w, r, maxBytes)
		if err != nil {
			fail(w, err)
			return
		}
		t, err := svc.CreateFromGift(r.Context(), chi.URLParam(r, "courseID"), up.Title, up.Gift,
			content.TestOptions{TimeLimit: up.TimeLimit, PassingScore: up.PassingScore})
		if err != nil {
			fail(w, err)
			return
		}
		if _, err := bs.Put("tests/"+t.ID+".gift", strings.NewReader(up.Gift)); err != nil {
			log.Printf("store source of test %s: %v", t.ID, err)
		}
		if err := events.Append(r.Context(), syncx.NewEvent(syncx.TypeTestCreated, t.ID, map[string]any{
			"course_id": t.CourseID, "title": t.Title, "questions": len(t.Questions),
		})); err != nil {
			log.Printf("event %s: %v", syncx.TypeTestCreated, err)
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// POST /tests/preview parses markup without storing anything, so an author
// can check an upload first.
func PreviewTestHandler(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		var text string
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
			text = string(b)
		} else {
			b, err := io.ReadAll(r.Body)
			if err != nil {
				fail(w, err)
				return
			}
			text = string(b)
		}
		qs := gift.Parse(text)
		if len(qs) == 0 {
			fail(w, gift.ErrNoQuestions)
			return
		}
		issues := []gift.Issue{}
		var verr *gift.ValidationError
		if err := gift.Validate(qs); errors.As(err, &verr) {
			issues = verr.Issues
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": qs, "issues": issues})
	}
}

func ListTestsHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := store.ListTests(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summarize(ts))
	}
}

// GET /tests/{testID}. Answer keys and feedback are only shown to roles that
// may create tests.
func GetTestHandler(store content.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			fail(w, err)
			return
		}
		if checker.Has(rbac.RoleFromContext(r.Context()), "test:create") {
			writeJSON(w, http.StatusOK, t)
			return
		}
		writeJSON(w, http.StatusOK, t.Public())
	}
}

// GET /tests/{testID}/export
func ExportTestHandler(svc *content.TestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		text, err := svc.ExportGift(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".gift"))
		_, _ = io.WriteString(w, text)
	}
}

func DeleteTestHandler(store content.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		if err := store.DeleteTest(r.Context(), id); err != nil {
			fail(w, err)
			return
		}
		if err := bs.Delete("tests/" + id + ".gift"); err != nil {
			log.Printf("delete source of test %s: %v", id, err)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
