package content

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mind-engage/learnportal/internal/gift"
)

// TestOptions carries the optional settings of an uploaded test.
type TestOptions struct {
	TimeLimit    *int // minutes
	PassingScore *int // percent
}

func (o TestOptions) validate() error {
	if o.TimeLimit != nil && *o.TimeLimit <= 0 {
		return fmt.Errorf("%w: time limit must be a positive number of minutes", ErrInvalid)
	}
	if o.PassingScore != nil && (*o.PassingScore < 0 || *o.PassingScore > 100) {
		return fmt.Errorf("%w: passing score must be between 0 and 100", ErrInvalid)
	}
	return nil
}

// TestService creates tests from uploaded markup and exports them again.
type TestService struct {
	store Store
	newID func() string
	// Strict rejects uploads whose questions would not survive an export.
	Strict bool
}

func NewTestService(store Store, newID func() string) *TestService {
	if newID == nil {
		newID = uuid.NewString
	}
	return &TestService{store: store, newID: newID}
}

// CreateTest assigns question ids and stores the questions in order.
func (s *TestService) CreateTest(ctx context.Context, courseID, title string, qs []gift.Question, opts TestOptions) (string, error) {
	return s.create(ctx, courseID, title, "", qs, opts)
}

// CreateFromGift parses markup and creates a test from it. Nothing is stored
// when the text holds no valid question.
func (s *TestService) CreateFromGift(ctx context.Context, courseID, title, text string, opts TestOptions) (Test, error) {
	qs := gift.Parse(text)
	if len(qs) == 0 {
		return Test{}, gift.ErrNoQuestions
	}
	if err := gift.Validate(qs); err != nil {
		if s.Strict {
			return Test{}, err
		}
		log.Printf("test %q: %v", title, err)
	}
	id, err := s.create(ctx, courseID, title, text, qs, opts)
	if err != nil {
		return Test{}, err
	}
	return s.store.GetTest(ctx, id)
}

func (s *TestService) create(ctx context.Context, courseID, title, source string, qs []gift.Question, opts TestOptions) (string, error) {
	if len(qs) == 0 {
		return "", gift.ErrNoQuestions
	}
	if err := opts.validate(); err != nil {
		return "", err
	}
	t := Test{
		CourseID:     courseID,
		Title:        title,
		TimeLimit:    opts.TimeLimit,
		PassingScore: opts.PassingScore,
		Gift:         source,
		Questions:    make([]Question, len(qs)),
	}
	for i, q := range qs {
		t.Questions[i] = Question{
			ID:            s.newID(),
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Feedback:      q.Feedback,
		}
	}
	return s.store.CreateTest(ctx, t)
}

// ExportGift renders a stored test as markup.
func (s *TestService) ExportGift(ctx context.Context, testID string) (string, error) {
	t, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return "", fmt.Errorf("export test %s: %w", testID, err)
	}
	return gift.Serialize(t.Markup()), nil
}
