package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrOutOfStock = errors.New("insufficient stock")
	ErrConflict   = errors.New("already exists")
	ErrInvalid    = errors.New("invalid input")
)

type Collection string

const (
	Courses   Collection = "courses"
	Videos    Collection = "videos"
	Materials Collection = "materials"
	Tests     Collection = "tests"
	Books     Collection = "books"
	Results   Collection = "test_results"
	Users     Collection = "users"
)

// Doc is one stored document. Parent and Ref are the two indexed lookup keys:
// Parent holds the course (or user, for results) a document belongs to, Ref a
// secondary key such as a test id or a username.
type Doc struct {
	ID        string
	Parent    string
	Ref       string
	Data      []byte
	CreatedAt int64
}

// Query filters a listing; empty fields match everything.
type Query struct {
	Parent string
	Ref    string
}

// Docs is the document store behind a Repo. List returns documents in
// insertion order.
type Docs interface {
	Put(ctx context.Context, c Collection, d Doc) error
	Get(ctx context.Context, c Collection, id string) (Doc, error)
	List(ctx context.Context, c Collection, q Query) ([]Doc, error)
	Delete(ctx context.Context, c Collection, id string) error
	// Update replaces a document with fn's result atomically.
	Update(ctx context.Context, c Collection, id string, fn func(Doc) (Doc, error)) error
}

type Store interface {
	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	UpdateCourse(ctx context.Context, c Course) (Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateVideo(ctx context.Context, v Video) (Video, error)
	ListVideos(ctx context.Context, courseID string) ([]Video, error)
	UpdateVideo(ctx context.Context, v Video) (Video, error)
	DeleteVideo(ctx context.Context, id string) error

	CreateMaterial(ctx context.Context, m Material) (Material, error)
	GetMaterial(ctx context.Context, id string) (Material, error)
	ListMaterials(ctx context.Context, courseID string) ([]Material, error)
	UpdateMaterial(ctx context.Context, m Material) (Material, error)
	DeleteMaterial(ctx context.Context, id string) error

	// CreateTest stores t as given, questions in order, and returns its id.
	CreateTest(ctx context.Context, t Test) (string, error)
	GetTest(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context, courseID string) ([]Test, error)
	DeleteTest(ctx context.Context, id string) error

	CreateBook(ctx context.Context, b Book) (Book, error)
	GetBook(ctx context.Context, id string) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	UpdateBook(ctx context.Context, b Book) (Book, error)
	DeleteBook(ctx context.Context, id string) error
	// AdjustStock adds delta to a book's stock, failing with ErrOutOfStock
	// rather than going negative.
	AdjustStock(ctx context.Context, bookID string, delta int) (Book, error)

	SaveResult(ctx context.Context, r TestResult) (TestResult, error)
	ListResults(ctx context.Context, f ResultFilter) ([]TestResult, error)

	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id string) error
}

type ResultFilter struct {
	UserID string
	TestID string
}

// Repo implements Store on top of a Docs backend.
type Repo struct {
	docs  Docs
	newID func() string
}

var _ Store = (*Repo)(nil)

// NewRepo builds a Repo. newID assigns identifiers to new documents; nil
// means random UUIDs.
func NewRepo(docs Docs, newID func() string) *Repo {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Repo{docs: docs, newID: newID}
}

// NewID exposes the repo's identifier generator to callers that assign ids
// to nested values, such as questions.
func (r *Repo) NewID() string { return r.newID() }

func put[T any](ctx context.Context, r *Repo, c Collection, id, parent, ref string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c, id, err)
	}
	return r.docs.Put(ctx, c, Doc{ID: id, Parent: parent, Ref: ref, Data: b, CreatedAt: time.Now().UnixNano()})
}

func get[T any](ctx context.Context, r *Repo, c Collection, id string) (T, error) {
	var v T
	d, err := r.docs.Get(ctx, c, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(d.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", c, id, err)
	}
	return v, nil
}

func list[T any](ctx context.Context, r *Repo, c Collection, q Query) ([]T, error) {
	docs, err := r.docs.List(ctx, c, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c, d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// replace overwrites an existing document, keeping its position.
func replace[T any](ctx context.Context, r *Repo, c Collection, id, parent, ref string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c, id, err)
	}
	return r.docs.Update(ctx, c, id, func(d Doc) (Doc, error) {
		d.Parent, d.Ref, d.Data = parent, ref, b
		return d, nil
	})
}
