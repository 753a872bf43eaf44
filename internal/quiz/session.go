// Package quiz runs one timed attempt at a multiple-choice test: navigation,
// answer capture, the countdown and scoring.
//
// A Session is not safe for concurrent use. Callers that share one (the HTTP
// layer does) serialize access themselves; see Registry.
package quiz

type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

type Question struct {
	ID            string
	Text          string
	Options       []string
	CorrectAnswer int
	Feedback      string
}

// Test is what a session needs from a stored test. TimeLimit is in minutes,
// zero means untimed. A nil PassingScore means every finished attempt passes.
type Test struct {
	Questions    []Question
	TimeLimit    int
	PassingScore *int
}

type Session struct {
	test      Test
	phase     Phase
	index     int
	answers   Answers
	timed     bool
	remaining int
}

func NewSession(t Test) *Session {
	s := &Session{test: t, phase: PhaseInProgress}
	if t.TimeLimit > 0 {
		s.timed = true
		s.remaining = t.TimeLimit * 60
	}
	return s
}

func (s *Session) Phase() Phase      { return s.phase }
func (s *Session) Finished() bool    { return s.phase == PhaseFinished }
func (s *Session) CurrentIndex() int { return s.index }
func (s *Session) Len() int          { return len(s.test.Questions) }

// Answers returns the current answer map. The value is never mutated
// afterwards, so it may be kept and read freely.
func (s *Session) Answers() Answers { return s.answers }

func (s *Session) Answered(i int) bool {
	_, ok := s.answers.Get(i)
	return ok
}

// RemainingSeconds reports the countdown; ok is false for untimed tests.
func (s *Session) RemainingSeconds() (int, bool) { return s.remaining, s.timed }

func (s *Session) Question(i int) (Question, bool) {
	if i < 0 || i >= len(s.test.Questions) {
		return Question{}, false
	}
	return s.test.Questions[i], true
}

func (s *Session) Current() (Question, bool) { return s.Question(s.index) }

// SelectAnswer records option for the current question, replacing any earlier
// choice. Out-of-range options are ignored.
func (s *Session) SelectAnswer(option int) {
	if s.Finished() {
		return
	}
	q, ok := s.Current()
	if !ok || option < 0 || option >= len(q.Options) {
		return
	}
	s.answers = s.answers.with(s.index, option)
}

func (s *Session) GoToPrevious() {
	if s.Finished() || s.index == 0 {
		return
	}
	s.index--
}

// Advance moves to the next question once the current one is answered. On the
// last question it finishes the session.
func (s *Session) Advance() {
	if s.Finished() {
		return
	}
	if s.Len() == 0 {
		s.finish()
		return
	}
	if !s.Answered(s.index) {
		return
	}
	if s.index == s.Len()-1 {
		s.finish()
		return
	}
	s.index++
}

// Tick is the once-per-second timer callback. Reaching zero finishes the
// session whatever the position; late ticks are ignored.
func (s *Session) Tick() {
	if !s.timed || s.Finished() {
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.finish()
	}
}

// Finish submits the attempt as it stands. Unanswered questions score as
// incorrect.
func (s *Session) Finish() {
	if s.Finished() {
		return
	}
	s.finish()
}

func (s *Session) finish() { s.phase = PhaseFinished }
