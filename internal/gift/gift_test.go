package gift

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Question
	}{
		{
			name: "single question",
			in:   "What is 2+2?\n{3~=4~5}",
			want: []Question{{Text: "What is 2+2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1}},
		},
		{
			name: "first marker wins",
			in:   "Pick\n{=A~=B}",
			want: []Question{{Text: "Pick", Options: []string{"A", "B"}, CorrectAnswer: 0}},
		},
		{
			name: "no marker defaults",
			in:   "Pick\n{A~B~C}",
			want: []Question{{Text: "Pick", Options: []string{"A", "B", "C"}, CorrectAnswer: DefaultCorrectAnswer}},
		},
		{
			name: "malformed block skipped",
			in:   "Question with no options\n\nValid Q\n{=Yes~No}",
			want: []Question{{Text: "Valid Q", Options: []string{"Yes", "No"}, CorrectAnswer: 0}},
		},
		{
			name: "feedback",
			in:   "Q?\n{=A~B}\n####Remember X####",
			want: []Question{{Text: "Q?", Options: []string{"A", "B"}, CorrectAnswer: 0, Feedback: "Remember X"}},
		},
		{
			name: "legacy inline answer stripped from prompt",
			in:   "{1} Capital of France?\n{Lyon~=Paris}",
			want: []Question{{Text: "Capital of France?", Options: []string{"Lyon", "Paris"}, CorrectAnswer: 1}},
		},
		{
			name: "whitespace trimmed",
			in:   "  Spaced  \n  { a ~ = b ~c }  ",
			want: []Question{{Text: "Spaced", Options: []string{"a", "b", "c"}, CorrectAnswer: 1}},
		},
		{
			name: "several blank lines and CRLF",
			in:   "One\r\n{=x~y}\r\n\r\n   \r\n\r\nTwo\r\n{x~=y}\r\n",
			want: []Question{
				{Text: "One", Options: []string{"x", "y"}, CorrectAnswer: 0},
				{Text: "Two", Options: []string{"x", "y"}, CorrectAnswer: 1},
			},
		},
		{
			name: "empty group skipped",
			in:   "Q\n{}",
			want: []Question{},
		},
		{
			name: "unterminated group skipped",
			in:   "Q\n{A~B",
			want: []Question{},
		},
		{
			name: "single option tolerated",
			in:   "Q\n{=only}",
			want: []Question{{Text: "Q", Options: []string{"only"}, CorrectAnswer: 0}},
		},
		{
			name: "empty input",
			in:   "\n\n  \n",
			want: []Question{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseTieBreakRendersStrippedOption(t *testing.T) {
	qs := Parse("Q\n{=A~=B}")
	require.Len(t, qs, 1)
	assert.Equal(t, 0, qs[0].CorrectAnswer)
	assert.Equal(t, "B", qs[0].Options[1])
}

func TestParseFeedbackAnywhereInBlock(t *testing.T) {
	qs := Parse("####Read chapter 2####\nQ?\n{A~=B}")
	require.Len(t, qs, 1)
	assert.Equal(t, "Read chapter 2", qs[0].Feedback)
	assert.Equal(t, "####Read chapter 2####", qs[0].Text)
}

func TestRoundTrip(t *testing.T) {
	qs := []Question{
		{Text: "What is the derivative of x^2?", Options: []string{"x", "2x", "2x^2"}, CorrectAnswer: 1},
		{Text: "What is the integral of 2x?", Options: []string{"x^2", "x^2 + C"}, CorrectAnswer: 1, Feedback: "Do not forget the constant"},
		{Text: "Pick the first", Options: []string{"first", "second", "third", "fourth"}, CorrectAnswer: 0},
	}
	require.NoError(t, Validate(qs))

	text := Serialize(qs)
	assert.Equal(t, qs, Parse(text))
	assert.Equal(t, text, Serialize(Parse(text)))
}

func TestSerializeLayout(t *testing.T) {
	got := Serialize([]Question{
		{Text: "A?", Options: []string{"x", "y"}, CorrectAnswer: 1, Feedback: "fb"},
		{Text: "B?", Options: []string{"p", "q"}},
	})
	want := "A?\n{x~=y}\n####fb####\n\nB?\n{=p~q}\n"
	assert.Equal(t, want, got)
}

func TestParseReader(t *testing.T) {
	qs, err := ParseReader(strings.NewReader("Q\n{=a~b}"))
	require.NoError(t, err)
	assert.Len(t, qs, 1)

	_, err = ParseReader(strings.NewReader("no options here"))
	assert.True(t, errors.Is(err, ErrNoQuestions))
}

func TestValidate(t *testing.T) {
	err := Validate([]Question{
		{Text: "ok", Options: []string{"a", "b"}},
		{Text: "bad ~ prompt", Options: []string{"a=b", "c"}, Feedback: "#1"},
		{Text: "", Options: []string{"a"}, CorrectAnswer: 3},
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	fields := map[string]bool{}
	for _, is := range ve.Issues {
		assert.NotEqual(t, 0, is.Index)
		fields[is.Field] = true
	}
	for _, f := range []string{"text", "options[0]", "feedback", "options", "correct_answer"} {
		assert.True(t, fields[f], "missing issue for %s", f)
	}
	assert.Contains(t, err.Error(), "question 2 text")
}
