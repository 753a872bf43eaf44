package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQuestions() Test {
	return Test{Questions: []Question{
		{ID: "q1", Text: "derivative of x^2", Options: []string{"x", "2x", "2x^2"}, CorrectAnswer: 1},
		{ID: "q2", Text: "integral of 2x", Options: []string{"x^2", "x^2 + C"}, CorrectAnswer: 1, Feedback: "constant"},
	}}
}

func intp(v int) *int { return &v }

func TestNewSession(t *testing.T) {
	s := NewSession(twoQuestions())
	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 0, s.Answers().Len())
	_, timed := s.RemainingSeconds()
	assert.False(t, timed)

	tt := twoQuestions()
	tt.TimeLimit = 2
	rem, timed := NewSession(tt).RemainingSeconds()
	assert.True(t, timed)
	assert.Equal(t, 120, rem)
}

func TestNavigation(t *testing.T) {
	s := NewSession(twoQuestions())

	s.GoToPrevious()
	assert.Equal(t, 0, s.CurrentIndex(), "previous at first question")

	s.Advance()
	assert.Equal(t, 0, s.CurrentIndex(), "advance without an answer")
	assert.Equal(t, PhaseInProgress, s.Phase())

	s.SelectAnswer(0)
	s.SelectAnswer(1)
	got, _ := s.Answers().Get(0)
	assert.Equal(t, 1, got, "selection overwrites")
	assert.Equal(t, 0, s.CurrentIndex(), "select does not move")

	s.Advance()
	assert.Equal(t, 1, s.CurrentIndex())

	s.GoToPrevious()
	assert.Equal(t, 0, s.CurrentIndex())
	s.Advance()
	s.SelectAnswer(0)
	s.Advance()
	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestSelectAnswerIgnoresOutOfRange(t *testing.T) {
	s := NewSession(twoQuestions())
	s.SelectAnswer(-1)
	s.SelectAnswer(3)
	assert.False(t, s.Answered(0))
}

func TestAnswersAreCopyOnWrite(t *testing.T) {
	s := NewSession(twoQuestions())
	s.SelectAnswer(0)
	before := s.Answers()
	s.SelectAnswer(2)

	v, _ := before.Get(0)
	assert.Equal(t, 0, v)
	v, _ = s.Answers().Get(0)
	assert.Equal(t, 2, v)
}

func TestScore(t *testing.T) {
	s := NewSession(twoQuestions())
	_, ok := s.Score()
	assert.False(t, ok, "score before finish")

	s.SelectAnswer(1)
	s.Finish()

	rep, ok := s.Score()
	require.True(t, ok)
	assert.Equal(t, 1, rep.CorrectCount)
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 50.0, rep.Percentage)
	assert.True(t, rep.Passed, "no passing score means passed")
	require.Len(t, rep.Items, 2)
	assert.Equal(t, OutcomeCorrect, rep.Items[0].Outcome)
	assert.Equal(t, OutcomeUnanswered, rep.Items[1].Outcome)
	assert.Nil(t, rep.Items[1].Selected)
	assert.Equal(t, "constant", rep.Items[1].Feedback)
}

func TestScorePassingThreshold(t *testing.T) {
	tests := []struct {
		name    string
		passing int
		answers []int
		want    bool
	}{
		{name: "exactly at threshold", passing: 50, answers: []int{1, 0}, want: true},
		{name: "below threshold", passing: 60, answers: []int{1, 0}, want: false},
		{name: "all correct", passing: 100, answers: []int{1, 1}, want: true},
		{name: "incorrect answers", passing: 1, answers: []int{0, 0}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test := twoQuestions()
			test.PassingScore = intp(tt.passing)
			s := NewSession(test)
			for _, a := range tt.answers {
				s.SelectAnswer(a)
				s.Advance()
			}
			rep, ok := s.Score()
			require.True(t, ok)
			assert.Equal(t, tt.want, rep.Passed)
		})
	}
}

func TestEmptyTest(t *testing.T) {
	s := NewSession(Test{PassingScore: intp(80)})
	s.Advance()
	require.Equal(t, PhaseFinished, s.Phase())

	rep, ok := s.Score()
	require.True(t, ok)
	assert.Equal(t, 0, rep.Total)
	assert.Equal(t, EmptyTestPercentage, rep.Percentage)
	assert.True(t, rep.Passed)
}

func TestTimerForcesFinish(t *testing.T) {
	test := twoQuestions()
	test.TimeLimit = 1
	s := NewSession(test)
	s.remaining = 1

	s.Tick()
	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, 0, s.CurrentIndex())
	rem, _ := s.RemainingSeconds()
	assert.Equal(t, 0, rem)

	s.Tick()
	s.SelectAnswer(1)
	s.GoToPrevious()
	s.Advance()
	rem, _ = s.RemainingSeconds()
	assert.Equal(t, 0, rem)
	assert.Equal(t, 0, s.Answers().Len())

	rep, _ := s.Score()
	assert.Equal(t, 0, rep.CorrectCount)
}

func TestTickUntimedIsNoop(t *testing.T) {
	s := NewSession(twoQuestions())
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	assert.Equal(t, PhaseInProgress, s.Phase())
}

func TestSnapshot(t *testing.T) {
	test := twoQuestions()
	test.TimeLimit = 1
	s := NewSession(test)
	s.SelectAnswer(2)
	s.Tick()

	v := s.Snapshot()
	assert.Equal(t, PhaseInProgress, v.Phase)
	assert.Equal(t, []bool{true, false}, v.Answered)
	require.NotNil(t, v.Selected)
	assert.Equal(t, 2, *v.Selected)
	require.NotNil(t, v.RemainingSeconds)
	assert.Equal(t, 59, *v.RemainingSeconds)
	assert.Nil(t, v.Report)

	s.Finish()
	v = s.Snapshot()
	require.NotNil(t, v.Report)
	assert.Equal(t, 0, v.Report.CorrectCount)
}

func TestAnswersSlice(t *testing.T) {
	s := NewSession(twoQuestions())
	s.SelectAnswer(1)
	assert.Equal(t, []int{1, -1}, s.Answers().Slice(2))
	assert.Equal(t, []int{0}, s.Answers().Indexes())
}
