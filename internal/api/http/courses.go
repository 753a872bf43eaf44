package http

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/storage"
)

// Handlers only; routes live in main.go.

type courseReq struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Icon        string `json:"icon"`
}

func (c courseReq) course(id string) content.Course {
	return content.Course{ID: id, Title: strings.TrimSpace(c.Title), Description: c.Description, ImageURL: c.ImageURL, Icon: c.Icon}
}

func ListCoursesHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := store.ListCourses(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cs)
	}
}

type testSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
	TimeLimit     *int   `json:"time_limit,omitempty"`
	PassingScore  *int   `json:"passing_score,omitempty"`
}

func summarize(ts []content.Test) []testSummary {
	out := make([]testSummary, len(ts))
	for i, t := range ts {
		out[i] = testSummary{ID: t.ID, Title: t.Title, QuestionCount: len(t.Questions), TimeLimit: t.TimeLimit, PassingScore: t.PassingScore}
	}
	return out
}

// GET /courses/{courseID} returns the course with its videos, materials and
// test summaries, as the course viewer shows them.
func GetCourseHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "courseID")
		c, err := store.GetCourse(ctx, id)
		if err != nil {
			fail(w, err)
			return
		}
		vs, err := store.ListVideos(ctx, id)
		if err != nil {
			fail(w, err)
			return
		}
		ms, err := store.ListMaterials(ctx, id)
		if err != nil {
			fail(w, err)
			return
		}
		ts, err := store.ListTests(ctx, id)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"course":    c,
			"videos":    vs,
			"materials": ms,
			"tests":     summarize(ts),
		})
	}
}

func CreateCourseHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		c, err := store.CreateCourse(r.Context(), req.course(""))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func UpdateCourseHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		c, err := store.UpdateCourse(r.Context(), req.course(chi.URLParam(r, "courseID")))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCourseHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteCourse(r.Context(), chi.URLParam(r, "courseID")); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- videos ----

type videoReq struct {
	Title       string `json:"title" validate:"required,notblank"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description"`
}

func ListVideosHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vs, err := store.ListVideos(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vs)
	}
}

func CreateVideoHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req videoReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		v, err := store.CreateVideo(r.Context(), content.Video{
			CourseID: chi.URLParam(r, "courseID"), Title: req.Title, URL: req.URL, Description: req.Description,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func UpdateVideoHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req videoReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		v, err := store.UpdateVideo(r.Context(), content.Video{
			ID: chi.URLParam(r, "videoID"), Title: req.Title, URL: req.URL, Description: req.Description,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func DeleteVideoHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteVideo(r.Context(), chi.URLParam(r, "videoID")); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- materials ----

type materialReq struct {
	Title       string               `json:"title" validate:"required,notblank"`
	Type        content.MaterialType `json:"type" validate:"omitempty,oneof=pdf doc ppt other"`
	URL         string               `json:"url" validate:"required,url"`
	Description string               `json:"description"`
}

func ListMaterialsHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := store.ListMaterials(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ms)
	}
}

// POST /courses/{courseID}/materials links an external document.
func CreateMaterialHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req materialReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		m, err := store.CreateMaterial(r.Context(), content.Material{
			CourseID: chi.URLParam(r, "courseID"), Title: req.Title, Type: req.Type, URL: req.URL, Description: req.Description,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// materialType guesses the material type from a file name.
func materialType(name string) content.MaterialType {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return content.MaterialPDF
	case ".doc", ".docx", ".odt":
		return content.MaterialDoc
	case ".ppt", ".pptx", ".odp":
		return content.MaterialPPT
	default:
		return content.MaterialOther
	}
}

// POST /courses/{courseID}/materials/upload  multipart: file, title, description
func UploadMaterialHandler(store content.Store, bs storage.BlobStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if _, err := store.GetCourse(r.Context(), courseID); err != nil {
			fail(w, err)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		name := path.Base(strings.ReplaceAll(hdr.Filename, "\\", "/"))
		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			title = name
		}
		key, err := bs.Put(fmt.Sprintf("materials/%s/%s-%s", courseID, uuid.NewString(), name), f)
		if err != nil {
			fail(w, err)
			return
		}
		m, err := store.CreateMaterial(r.Context(), content.Material{
			CourseID:    courseID,
			Title:       title,
			Type:        materialType(name),
			URL:         bs.URL(key),
			BlobKey:     key,
			Description: r.FormValue("description"),
		})
		if err != nil {
			_ = bs.Delete(key)
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func DeleteMaterialHandler(store content.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "materialID")
		m, err := store.GetMaterial(ctx, id)
		if err != nil {
			fail(w, err)
			return
		}
		if err := store.DeleteMaterial(ctx, id); err != nil {
			fail(w, err)
			return
		}
		if m.BlobKey != "" {
			if err := bs.Delete(m.BlobKey); err != nil {
				log.Printf("delete blob %s: %v", m.BlobKey, err)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
