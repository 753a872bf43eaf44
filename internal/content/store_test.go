package content

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/learnportal/internal/db"
)

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "id" + strconv.Itoa(n)
	}
}

// backends runs fn against every Docs implementation.
func backends(t *testing.T, fn func(t *testing.T, r *Repo)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewRepo(NewMemoryDocs(), seqIDs()))
	})
	t.Run("sqlite", func(t *testing.T) {
		dsn := "file:" + filepath.Join(t.TempDir(), "store.db") + "?_pragma=busy_timeout(5000)"
		dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
		require.NoError(t, err)
		t.Cleanup(func() { dbh.Close() })
		fn(t, NewRepo(NewSQLDocs(dbh, "sqlite"), seqIDs()))
	})
}

func intp(n int) *int { return &n }

func TestCourseCascade(t *testing.T) {
	backends(t, func(t *testing.T, r *Repo) {
		ctx := context.Background()
		c, err := r.CreateCourse(ctx, Course{Title: "Go"})
		require.NoError(t, err)
		other, err := r.CreateCourse(ctx, Course{Title: "SQL"})
		require.NoError(t, err)

		_, err = r.CreateVideo(ctx, Video{CourseID: c.ID, Title: "intro", URL: "https://v.test/1"})
		require.NoError(t, err)
		_, err = r.CreateMaterial(ctx, Material{CourseID: c.ID, Title: "notes"})
		require.NoError(t, err)
		tid, err := r.CreateTest(ctx, Test{CourseID: c.ID, Title: "quiz"})
		require.NoError(t, err)
		_, err = r.CreateVideo(ctx, Video{CourseID: other.ID, Title: "keep", URL: "https://v.test/2"})
		require.NoError(t, err)

		_, err = r.CreateVideo(ctx, Video{CourseID: "missing", Title: "x", URL: "https://v.test/3"})
		assert.ErrorIs(t, err, ErrNotFound)

		ms, err := r.ListMaterials(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, ms, 1)
		assert.Equal(t, MaterialOther, ms[0].Type)

		require.NoError(t, r.DeleteCourse(ctx, c.ID))
		_, err = r.GetCourse(ctx, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = r.GetTest(ctx, tid)
		assert.ErrorIs(t, err, ErrNotFound)
		vs, err := r.ListVideos(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, vs)
		vs, err = r.ListVideos(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, vs, 1)

		assert.ErrorIs(t, r.DeleteCourse(ctx, c.ID), ErrNotFound)
	})
}

func TestTestKeepsQuestionOrder(t *testing.T) {
	backends(t, func(t *testing.T, r *Repo) {
		ctx := context.Background()
		c, err := r.CreateCourse(ctx, Course{Title: "Go"})
		require.NoError(t, err)
		in := Test{
			CourseID:     c.ID,
			Title:        "quiz",
			TimeLimit:    intp(10),
			PassingScore: intp(70),
			Questions: []Question{
				{ID: "q-b", Text: "second?", Options: []string{"x", "y"}, CorrectAnswer: 1},
				{ID: "q-a", Text: "first?", Options: []string{"x", "y", "z"}, CorrectAnswer: 2, Feedback: "because"},
			},
		}
		id, err := r.CreateTest(ctx, in)
		require.NoError(t, err)

		got, err := r.GetTest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, in.Questions, got.Questions)
		assert.Equal(t, 10, *got.TimeLimit)
		assert.Equal(t, 70, *got.PassingScore)

		ts, err := r.ListTests(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, ts, 1)
		assert.Equal(t, id, ts[0].ID)
	})
}

func TestUpdatesKeepIdentity(t *testing.T) {
	backends(t, func(t *testing.T, r *Repo) {
		ctx := context.Background()
		c, err := r.CreateCourse(ctx, Course{Title: "Go"})
		require.NoError(t, err)
		c2, err := r.CreateCourse(ctx, Course{Title: "Rust"})
		require.NoError(t, err)

		c.Title = "Go 2"
		_, err = r.UpdateCourse(ctx, c)
		require.NoError(t, err)
		cs, err := r.ListCourses(ctx)
		require.NoError(t, err)
		require.Len(t, cs, 2)
		assert.Equal(t, "Go 2", cs[0].Title)
		assert.Equal(t, c2.ID, cs[1].ID)

		_, err = r.UpdateCourse(ctx, Course{ID: "nope", Title: "x"})
		assert.ErrorIs(t, err, ErrNotFound)

		m, err := r.CreateMaterial(ctx, Material{CourseID: c.ID, Title: "a", URL: "/assets/a.pdf", Type: MaterialPDF})
		require.NoError(t, err)
		m2, err := r.UpdateMaterial(ctx, Material{ID: m.ID, Title: "b", Type: MaterialPDF})
		require.NoError(t, err)
		assert.Equal(t, c.ID, m2.CourseID)
		assert.Equal(t, "/assets/a.pdf", m2.URL)
		got, err := r.GetMaterial(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "b", got.Title)
	})
}

func TestAdjustStock(t *testing.T) {
	backends(t, func(t *testing.T, r *Repo) {
		ctx := context.Background()
		b, err := r.CreateBook(ctx, Book{Title: "Go", Author: "A", Price: 10, Stock: 2})
		require.NoError(t, err)

		b, err = r.AdjustStock(ctx, b.ID, -2)
		require.NoError(t, err)
		assert.Equal(t, 0, b.Stock)

		_, err = r.AdjustStock(ctx, b.ID, -1)
		assert.ErrorIs(t, err, ErrOutOfStock)
		got, err := r.GetBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Stock)

		_, err = r.AdjustStock(ctx, "nope", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestResultsFilter(t *testing.T) {
	backends(t, func(t *testing.T, r *Repo) {
		ctx := context.Background()
		for _, res := range []TestResult{
			{UserID: "u1", TestID: "t1", Score: 50, Answers: []int{0, -1}},
			{UserID: "u1", TestID: "t2", Score: 100},
			{UserID: "u2", TestID: "t1", Score: 0},
		} {
			_, err := r.SaveResult(ctx, res)
			require.NoError(t, err)
		}
		own, err := r.ListResults(ctx, ResultFilter{UserID: "u1"})
		require.NoError(t, err)
		assert.Len(t, own, 2)
		assert.Equal(t, []int{0, -1}, own[0].Answers)

		t1, err := r.ListResults(ctx, ResultFilter{TestID: "t1"})
		require.NoError(t, err)
		assert.Len(t, t1, 2)

		one, err := r.ListResults(ctx, ResultFilter{UserID: "u2", TestID: "t1"})
		require.NoError(t, err)
		require.Len(t, one, 1)
		assert.NotZero(t, one[0].CompletedAt)
	})
}

func TestUsers(t *testing.T) {
	backends(t, func(t *testing.T, r *Repo) {
		ctx := context.Background()
		u, err := r.CreateUser(ctx, User{Username: " alice ", Role: RoleStudent, PasswordHash: "h1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)

		_, err = r.CreateUser(ctx, User{Username: "alice", Role: RoleAdmin})
		assert.ErrorIs(t, err, ErrConflict)

		got, err := r.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		_, err = r.GetUserByUsername(ctx, "")
		assert.ErrorIs(t, err, ErrNotFound)

		upd, err := r.UpdateUser(ctx, User{ID: u.ID, Role: RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, "alice", upd.Username)
		assert.Equal(t, "h1", upd.PasswordHash)
		assert.Equal(t, RoleAdmin, upd.Role)

		require.NoError(t, r.DeleteUser(ctx, u.ID))
		_, err = r.GetUser(ctx, u.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
