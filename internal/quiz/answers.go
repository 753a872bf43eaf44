package quiz

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Answers maps question index to the selected option. The zero value is an
// empty set. Updates copy the map, so a value handed out is never modified.
type Answers struct {
	m map[int]int
}

func (a Answers) Get(question int) (int, bool) {
	v, ok := a.m[question]
	return v, ok
}

func (a Answers) Len() int { return len(a.m) }

// Indexes returns the answered question indexes in ascending order.
func (a Answers) Indexes() []int {
	out := make([]int, 0, len(a.m))
	for k := range a.m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Slice renders the answers as a dense slice of length n with -1 marking an
// unanswered question.
func (a Answers) Slice(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
		if v, ok := a.m[i]; ok {
			out[i] = v
		}
	}
	return out
}

func (a Answers) with(question, option int) Answers {
	m := make(map[int]int, len(a.m)+1)
	for k, v := range a.m {
		m[k] = v
	}
	m[question] = option
	return Answers{m: m}
}

func (a Answers) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(a.m))
	for k, v := range a.m {
		out[strconv.Itoa(k)] = v
	}
	return json.Marshal(out)
}
