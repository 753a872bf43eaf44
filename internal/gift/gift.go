// Package gift reads and writes the GIFT-like quiz markup instructors upload.
//
// A file is a sequence of blank-line separated blocks. In each block the first
// line is the prompt, a later line carries the answer group {A~=B~C} with the
// correct option prefixed by '=', and an optional ####feedback#### segment may
// appear anywhere. The format has no escaping.
package gift

import (
	"errors"
	"io"
	"strings"
)

// DefaultCorrectAnswer is used when no option in the answer group carries '='.
const DefaultCorrectAnswer = 0

const feedbackDelim = "####"

// ErrNoQuestions is returned when an upload yields zero parseable blocks.
var ErrNoQuestions = errors.New("no valid questions found in file")

type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Feedback      string   `json:"feedback,omitempty"`
}

func (q Question) HasFeedback() bool { return q.Feedback != "" }

// Parse converts markup into questions in block order. Blocks without an
// answer group are skipped; Parse never fails.
func Parse(text string) []Question {
	out := []Question{}
	for _, block := range splitBlocks(text) {
		if q, ok := parseBlock(block); ok {
			out = append(out, q)
		}
	}
	return out
}

// ParseReader reads an uploaded file and parses it. It returns ErrNoQuestions
// when nothing in the file could be parsed.
func ParseReader(r io.Reader) ([]Question, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	qs := Parse(string(b))
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	return qs, nil
}

// splitBlocks breaks text on runs of blank (whitespace-only) lines.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		blocks []string
		cur    []string
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		if b := strings.Join(cur, "\n"); strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

func parseBlock(block string) (Question, bool) {
	lines := strings.Split(block, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	answerLine := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "{") {
			answerLine = i
			break
		}
	}
	if answerLine == -1 {
		return Question{}, false
	}
	group, ok := answerGroup(lines[answerLine])
	if !ok {
		return Question{}, false
	}

	q := Question{
		Text:          stripLeadingBraces(lines[0]),
		CorrectAnswer: DefaultCorrectAnswer,
	}
	marked := false
	for i, piece := range strings.Split(group, "~") {
		piece = strings.TrimSpace(piece)
		if strings.HasPrefix(piece, "=") {
			piece = strings.TrimSpace(piece[1:])
			if !marked {
				q.CorrectAnswer = i
				marked = true
			}
		}
		q.Options = append(q.Options, piece)
	}
	q.Feedback = feedback(block)
	return q, true
}

// stripLeadingBraces drops a leading {...} fragment left over from the inline
// answer style.
func stripLeadingBraces(s string) string {
	if !strings.HasPrefix(s, "{") {
		return s
	}
	if end := strings.Index(s, "}"); end >= 0 {
		s = s[end+1:]
	}
	return strings.TrimSpace(s)
}

// answerGroup returns the non-empty text between the first '{' and the '}'
// that closes it.
func answerGroup(line string) (string, bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != '{' {
			continue
		}
		end := strings.IndexByte(line[i+1:], '}')
		if end < 0 {
			return "", false
		}
		if end > 0 {
			return line[i+1 : i+1+end], true
		}
	}
	return "", false
}

// feedback finds the first ####text#### pair in the raw block, where text is
// non-empty and free of '#'.
func feedback(block string) string {
	for i := 0; i+len(feedbackDelim) <= len(block); i++ {
		if !strings.HasPrefix(block[i:], feedbackDelim) {
			continue
		}
		start := i + len(feedbackDelim)
		end := start
		for end < len(block) && block[end] != '#' {
			end++
		}
		if end > start && strings.HasPrefix(block[end:], feedbackDelim) {
			return strings.TrimSpace(block[start:end])
		}
	}
	return ""
}

// Serialize writes questions back to markup. Parse(Serialize(qs)) yields qs
// again as long as no prompt, option or feedback contains a delimiter; see
// Validate.
func Serialize(qs []Question) string {
	var b strings.Builder
	for i, q := range qs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(q.Text)
		b.WriteString("\n{")
		for j, opt := range q.Options {
			if j > 0 {
				b.WriteString("~")
			}
			if j == q.CorrectAnswer {
				b.WriteString("=")
			}
			b.WriteString(opt)
		}
		b.WriteString("}\n")
		if q.HasFeedback() {
			b.WriteString(feedbackDelim + q.Feedback + feedbackDelim + "\n")
		}
	}
	return b.String()
}
