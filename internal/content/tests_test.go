package content

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/learnportal/internal/gift"
)

const quizText = `Which keyword declares a constant?
{var~=const~let}
####Constants use const####

Zero value of an int?
{=0~nil~undefined}
`

func newService(t *testing.T) (*TestService, *Repo, Course) {
	t.Helper()
	ids := seqIDs()
	r := NewRepo(NewMemoryDocs(), ids)
	c, err := r.CreateCourse(context.Background(), Course{Title: "Go"})
	require.NoError(t, err)
	return NewTestService(r, ids), r, c
}

func TestCreateFromGift(t *testing.T) {
	svc, r, c := newService(t)
	ctx := context.Background()

	got, err := svc.CreateFromGift(ctx, c.ID, "Basics", quizText, TestOptions{TimeLimit: intp(15)})
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "Which keyword declares a constant?", got.Questions[0].Text)
	assert.Equal(t, []string{"var", "const", "let"}, got.Questions[0].Options)
	assert.Equal(t, 1, got.Questions[0].CorrectAnswer)
	assert.Equal(t, "Constants use const", got.Questions[0].Feedback)
	assert.NotEqual(t, got.Questions[0].ID, got.Questions[1].ID)
	assert.Equal(t, quizText, got.Gift)
	assert.Equal(t, 15, *got.TimeLimit)
	assert.Nil(t, got.PassingScore)

	stored, err := r.GetTest(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Questions, stored.Questions)
}

func TestCreateFromGiftRejectsEmpty(t *testing.T) {
	svc, r, c := newService(t)
	ctx := context.Background()

	_, err := svc.CreateFromGift(ctx, c.ID, "Nothing", "no questions\nhere", TestOptions{})
	assert.ErrorIs(t, err, gift.ErrNoQuestions)
	ts, err := r.ListTests(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestCreateFromGiftOptions(t *testing.T) {
	svc, _, c := newService(t)
	ctx := context.Background()

	_, err := svc.CreateFromGift(ctx, c.ID, "x", quizText, TestOptions{TimeLimit: intp(0)})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.CreateFromGift(ctx, c.ID, "x", quizText, TestOptions{PassingScore: intp(101)})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.CreateFromGift(ctx, "missing", "x", quizText, TestOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStrictRejectsSingleOption(t *testing.T) {
	svc, _, c := newService(t)
	ctx := context.Background()
	text := "Only one?\n{=yes}\n"

	_, err := svc.CreateFromGift(ctx, c.ID, "lenient", text, TestOptions{})
	require.NoError(t, err)

	svc.Strict = true
	_, err = svc.CreateFromGift(ctx, c.ID, "strict", text, TestOptions{})
	var verr *gift.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreateTestFromQuestions(t *testing.T) {
	svc, r, c := newService(t)
	ctx := context.Background()

	_, err := svc.CreateTest(ctx, c.ID, "empty", nil, TestOptions{})
	assert.ErrorIs(t, err, gift.ErrNoQuestions)

	id, err := svc.CreateTest(ctx, c.ID, "manual", []gift.Question{
		{Text: "A?", Options: []string{"a", "b"}, CorrectAnswer: 1},
	}, TestOptions{PassingScore: intp(60)})
	require.NoError(t, err)
	got, err := r.GetTest(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Gift)
	assert.NotEmpty(t, got.Questions[0].ID)
}

func TestExportGiftRoundTrip(t *testing.T) {
	svc, r, c := newService(t)
	ctx := context.Background()

	created, err := svc.CreateFromGift(ctx, c.ID, "Basics", quizText, TestOptions{})
	require.NoError(t, err)

	text, err := svc.ExportGift(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Which keyword declares a constant?\n{var~=const~let}\n####Constants use const####\n"))

	again, err := svc.CreateFromGift(ctx, c.ID, "Copy", text, TestOptions{})
	require.NoError(t, err)
	a, _ := r.GetTest(ctx, created.ID)
	b, _ := r.GetTest(ctx, again.ID)
	assert.Equal(t, a.Markup(), b.Markup())

	_, err = svc.ExportGift(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
