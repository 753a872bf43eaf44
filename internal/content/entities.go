package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ---- courses ----

func (r *Repo) CreateCourse(ctx context.Context, c Course) (Course, error) {
	c.ID = r.newID()
	return c, put(ctx, r, Courses, c.ID, "", "", c)
}

func (r *Repo) GetCourse(ctx context.Context, id string) (Course, error) {
	return get[Course](ctx, r, Courses, id)
}

func (r *Repo) ListCourses(ctx context.Context) ([]Course, error) {
	return list[Course](ctx, r, Courses, Query{})
}

func (r *Repo) UpdateCourse(ctx context.Context, c Course) (Course, error) {
	return c, replace(ctx, r, Courses, c.ID, "", "", c)
}

// DeleteCourse removes a course together with its videos, materials and
// tests.
func (r *Repo) DeleteCourse(ctx context.Context, id string) error {
	if err := r.docs.Delete(ctx, Courses, id); err != nil {
		return err
	}
	for _, c := range []Collection{Videos, Materials, Tests} {
		docs, err := r.docs.List(ctx, c, Query{Parent: id})
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := r.docs.Delete(ctx, c, d.ID); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
	}
	return nil
}

// ---- videos ----

func (r *Repo) CreateVideo(ctx context.Context, v Video) (Video, error) {
	if _, err := r.GetCourse(ctx, v.CourseID); err != nil {
		return Video{}, err
	}
	v.ID = r.newID()
	return v, put(ctx, r, Videos, v.ID, v.CourseID, "", v)
}

func (r *Repo) ListVideos(ctx context.Context, courseID string) ([]Video, error) {
	return list[Video](ctx, r, Videos, Query{Parent: courseID})
}

func (r *Repo) UpdateVideo(ctx context.Context, v Video) (Video, error) {
	old, err := get[Video](ctx, r, Videos, v.ID)
	if err != nil {
		return Video{}, err
	}
	v.CourseID = old.CourseID
	return v, replace(ctx, r, Videos, v.ID, v.CourseID, "", v)
}

func (r *Repo) DeleteVideo(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, Videos, id)
}

// ---- materials ----

func (r *Repo) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	if _, err := r.GetCourse(ctx, m.CourseID); err != nil {
		return Material{}, err
	}
	now := time.Now().Unix()
	m.ID = r.newID()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Type == "" {
		m.Type = MaterialOther
	}
	return m, put(ctx, r, Materials, m.ID, m.CourseID, "", m)
}

func (r *Repo) GetMaterial(ctx context.Context, id string) (Material, error) {
	return get[Material](ctx, r, Materials, id)
}

func (r *Repo) ListMaterials(ctx context.Context, courseID string) ([]Material, error) {
	return list[Material](ctx, r, Materials, Query{Parent: courseID})
}

func (r *Repo) UpdateMaterial(ctx context.Context, m Material) (Material, error) {
	old, err := get[Material](ctx, r, Materials, m.ID)
	if err != nil {
		return Material{}, err
	}
	m.CourseID, m.CreatedAt = old.CourseID, old.CreatedAt
	m.UpdatedAt = time.Now().Unix()
	if m.URL == "" {
		m.URL = old.URL
	}
	return m, replace(ctx, r, Materials, m.ID, m.CourseID, "", m)
}

func (r *Repo) DeleteMaterial(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, Materials, id)
}

// ---- tests ----

func (r *Repo) CreateTest(ctx context.Context, t Test) (string, error) {
	if _, err := r.GetCourse(ctx, t.CourseID); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = r.newID()
	}
	t.CreatedAt = time.Now().Unix()
	return t.ID, put(ctx, r, Tests, t.ID, t.CourseID, "", t)
}

func (r *Repo) GetTest(ctx context.Context, id string) (Test, error) {
	return get[Test](ctx, r, Tests, id)
}

func (r *Repo) ListTests(ctx context.Context, courseID string) ([]Test, error) {
	return list[Test](ctx, r, Tests, Query{Parent: courseID})
}

func (r *Repo) DeleteTest(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, Tests, id)
}

// ---- books ----

func (r *Repo) CreateBook(ctx context.Context, b Book) (Book, error) {
	b.ID = r.newID()
	return b, put(ctx, r, Books, b.ID, "", "", b)
}

func (r *Repo) GetBook(ctx context.Context, id string) (Book, error) {
	return get[Book](ctx, r, Books, id)
}

func (r *Repo) ListBooks(ctx context.Context) ([]Book, error) {
	return list[Book](ctx, r, Books, Query{})
}

func (r *Repo) UpdateBook(ctx context.Context, b Book) (Book, error) {
	return b, replace(ctx, r, Books, b.ID, "", "", b)
}

func (r *Repo) DeleteBook(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, Books, id)
}

func (r *Repo) AdjustStock(ctx context.Context, bookID string, delta int) (Book, error) {
	var out Book
	err := r.docs.Update(ctx, Books, bookID, func(d Doc) (Doc, error) {
		var b Book
		if err := json.Unmarshal(d.Data, &b); err != nil {
			return d, err
		}
		if b.Stock+delta < 0 {
			return d, ErrOutOfStock
		}
		b.Stock += delta
		data, err := json.Marshal(b)
		if err != nil {
			return d, err
		}
		d.Data = data
		out = b
		return d, nil
	})
	return out, err
}

// ---- results ----

func (r *Repo) SaveResult(ctx context.Context, res TestResult) (TestResult, error) {
	if res.ID == "" {
		res.ID = r.newID()
	}
	if res.CompletedAt == 0 {
		res.CompletedAt = time.Now().Unix()
	}
	return res, put(ctx, r, Results, res.ID, res.UserID, res.TestID, res)
}

func (r *Repo) ListResults(ctx context.Context, f ResultFilter) ([]TestResult, error) {
	return list[TestResult](ctx, r, Results, Query{Parent: f.UserID, Ref: f.TestID})
}

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u User) (User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if _, err := r.GetUserByUsername(ctx, u.Username); err == nil {
		return User{}, fmt.Errorf("username %q: %w", u.Username, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	u.ID = r.newID()
	u.CreatedAt = time.Now().Unix()
	return u, put(ctx, r, Users, u.ID, "", u.Username, u)
}

func (r *Repo) GetUser(ctx context.Context, id string) (User, error) {
	return get[User](ctx, r, Users, id)
}

func (r *Repo) GetUserByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrNotFound
	}
	us, err := list[User](ctx, r, Users, Query{Ref: username})
	if err != nil {
		return User{}, err
	}
	if len(us) == 0 {
		return User{}, ErrNotFound
	}
	return us[0], nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]User, error) {
	return list[User](ctx, r, Users, Query{})
}

// UpdateUser changes a user's role or password hash. The username is fixed.
func (r *Repo) UpdateUser(ctx context.Context, u User) (User, error) {
	old, err := r.GetUser(ctx, u.ID)
	if err != nil {
		return User{}, err
	}
	u.Username, u.CreatedAt = old.Username, old.CreatedAt
	if u.Role == "" {
		u.Role = old.Role
	}
	if u.PasswordHash == "" {
		u.PasswordHash = old.PasswordHash
	}
	return u, replace(ctx, r, Users, u.ID, "", u.Username, u)
}

func (r *Repo) DeleteUser(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, Users, id)
}
