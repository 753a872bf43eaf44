package content

import (
	"github.com/mind-engage/learnportal/internal/gift"
	"github.com/mind-engage/learnportal/internal/quiz"
)

type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
	Icon        string `json:"icon,omitempty"`
}

type Video struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description"`
}

type MaterialType string

const (
	MaterialPDF   MaterialType = "pdf"
	MaterialDoc   MaterialType = "doc"
	MaterialPPT   MaterialType = "ppt"
	MaterialOther MaterialType = "other"
)

type Material struct {
	ID          string       `json:"id"`
	CourseID    string       `json:"course_id"`
	Title       string       `json:"title" validate:"required"`
	Type        MaterialType `json:"type" validate:"omitempty,oneof=pdf doc ppt other"`
	URL         string       `json:"url"`
	BlobKey     string       `json:"blob_key,omitempty"` // set for uploaded files
	Description string       `json:"description,omitempty"`
	CreatedAt   int64        `json:"created_at"`
	UpdatedAt   int64        `json:"updated_at"`
}

type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Feedback      string   `json:"feedback,omitempty"`
}

type Test struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"course_id"`
	Title        string     `json:"title"`
	Questions    []Question `json:"questions"`
	TimeLimit    *int       `json:"time_limit,omitempty"`    // minutes
	PassingScore *int       `json:"passing_score,omitempty"` // percent
	Gift         string     `json:"gift,omitempty"`          // uploaded source
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// PublicQuestion is a question as shown to a student taking the test.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type PublicTest struct {
	ID           string           `json:"id"`
	CourseID     string           `json:"course_id"`
	Title        string           `json:"title"`
	Questions    []PublicQuestion `json:"questions"`
	TimeLimit    *int             `json:"time_limit,omitempty"`
	PassingScore *int             `json:"passing_score,omitempty"`
}

// Public strips answer keys and feedback.
func (t Test) Public() PublicTest {
	out := PublicTest{
		ID:           t.ID,
		CourseID:     t.CourseID,
		Title:        t.Title,
		TimeLimit:    t.TimeLimit,
		PassingScore: t.PassingScore,
		Questions:    make([]PublicQuestion, len(t.Questions)),
	}
	for i, q := range t.Questions {
		out.Questions[i] = PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options}
	}
	return out
}

// Quiz converts the stored test for a session.
func (t Test) Quiz() quiz.Test {
	qt := quiz.Test{PassingScore: t.PassingScore, Questions: make([]quiz.Question, len(t.Questions))}
	if t.TimeLimit != nil && *t.TimeLimit > 0 {
		qt.TimeLimit = *t.TimeLimit
	}
	for i, q := range t.Questions {
		qt.Questions[i] = quiz.Question{
			ID:            q.ID,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Feedback:      q.Feedback,
		}
	}
	return qt
}

// Markup converts the stored questions back to parser form.
func (t Test) Markup() []gift.Question {
	out := make([]gift.Question, len(t.Questions))
	for i, q := range t.Questions {
		out[i] = gift.Question{Text: q.Text, Options: q.Options, CorrectAnswer: q.CorrectAnswer, Feedback: q.Feedback}
	}
	return out
}

type Book struct {
	ID          string  `json:"id"`
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Description string  `json:"description,omitempty"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type TestResult struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	TestID         string  `json:"test_id"`
	CourseID       string  `json:"course_id"`
	Score          float64 `json:"score"` // percent
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	Passed         bool    `json:"passed"`
	Answers        []int   `json:"answers"` // -1 for unanswered
	CompletedAt    int64   `json:"completed_at"`
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"password_hash,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}
