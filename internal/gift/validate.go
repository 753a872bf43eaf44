package gift

import (
	"fmt"
	"strings"
)

// Issue describes one problem that would keep a question from surviving a
// Serialize/Parse round trip unchanged.
type Issue struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return fmt.Sprintf("question %d %s: %s", i.Index+1, i.Field, i.Reason)
}

type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return fmt.Sprintf("gift: %d issue(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

var delimiters = []string{"{", "}", "~", "=", feedbackDelim}

// Validate checks questions before they are stored or exported. It returns a
// *ValidationError listing every issue, or nil.
func Validate(qs []Question) error {
	var issues []Issue
	add := func(i int, field, reason string) {
		issues = append(issues, Issue{Index: i, Field: field, Reason: reason})
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Text) == "" {
			add(i, "text", "empty prompt")
		}
		if d := badChar(q.Text); d != "" {
			add(i, "text", "contains "+d)
		}
		if len(q.Options) < 2 {
			add(i, "options", fmt.Sprintf("has %d option(s), need at least 2", len(q.Options)))
		}
		for j, opt := range q.Options {
			field := fmt.Sprintf("options[%d]", j)
			if strings.TrimSpace(opt) == "" {
				add(i, field, "empty option")
			}
			if d := badChar(opt); d != "" {
				add(i, field, "contains "+d)
			}
		}
		if len(q.Options) > 0 && (q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options)) {
			add(i, "correct_answer", fmt.Sprintf("index %d out of range", q.CorrectAnswer))
		}
		if strings.Contains(q.Feedback, "#") {
			add(i, "feedback", "contains '#'")
		}
		if strings.Contains(q.Feedback, "\n") {
			add(i, "feedback", "contains a line break")
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

func badChar(s string) string {
	if strings.Contains(s, "\n") {
		return "a line break"
	}
	for _, d := range delimiters {
		if strings.Contains(s, d) {
			return "'" + d + "'"
		}
	}
	return ""
}
