package quiz

type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnanswered Outcome = "unanswered"
)

// EmptyTestPercentage is the score given to a test with no questions.
const EmptyTestPercentage = 100.0

type ItemResult struct {
	Index    int     `json:"index"`
	Selected *int    `json:"selected,omitempty"`
	Correct  int     `json:"correct_answer"`
	Outcome  Outcome `json:"outcome"`
	Feedback string  `json:"feedback,omitempty"`
}

type Report struct {
	CorrectCount int          `json:"correct_count"`
	Total        int          `json:"total"`
	Percentage   float64      `json:"percentage"`
	PassingScore *int         `json:"passing_score,omitempty"`
	Passed       bool         `json:"passed"`
	Items        []ItemResult `json:"items"`
}

// Score grades a finished session. ok is false while the session is still in
// progress.
func (s *Session) Score() (Report, bool) {
	if !s.Finished() {
		return Report{}, false
	}
	qs := s.test.Questions
	rep := Report{
		Total:        len(qs),
		PassingScore: s.test.PassingScore,
		Items:        make([]ItemResult, 0, len(qs)),
	}
	for i, q := range qs {
		item := ItemResult{Index: i, Correct: q.CorrectAnswer, Feedback: q.Feedback, Outcome: OutcomeUnanswered}
		if sel, ok := s.answers.Get(i); ok {
			sel := sel
			item.Selected = &sel
			item.Outcome = OutcomeIncorrect
			if sel == q.CorrectAnswer {
				item.Outcome = OutcomeCorrect
				rep.CorrectCount++
			}
		}
		rep.Items = append(rep.Items, item)
	}
	if rep.Total == 0 {
		rep.Percentage = EmptyTestPercentage
	} else {
		rep.Percentage = 100 * float64(rep.CorrectCount) / float64(rep.Total)
	}
	rep.Passed = rep.PassingScore == nil || rep.Percentage >= float64(*rep.PassingScore)
	return rep, true
}

// View is the read model handed to the presentation layer.
type View struct {
	Phase            Phase   `json:"phase"`
	CurrentIndex     int     `json:"current_index"`
	Total            int     `json:"total"`
	Answered         []bool  `json:"answered"`
	Selected         *int    `json:"selected,omitempty"`
	RemainingSeconds *int    `json:"remaining_seconds,omitempty"`
	Report           *Report `json:"report,omitempty"`
}

func (s *Session) Snapshot() View {
	v := View{
		Phase:        s.phase,
		CurrentIndex: s.index,
		Total:        s.Len(),
		Answered:     make([]bool, s.Len()),
	}
	for i := range v.Answered {
		v.Answered[i] = s.Answered(i)
	}
	if sel, ok := s.answers.Get(s.index); ok {
		v.Selected = &sel
	}
	if rem, ok := s.RemainingSeconds(); ok {
		v.RemainingSeconds = &rem
	}
	if rep, ok := s.Score(); ok {
		v.Report = &rep
	}
	return v
}
