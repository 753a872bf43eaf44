// Command giftcheck parses a quiz markup file, reports questions that would
// not survive an export, and writes the parsed questions as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/learnportal/internal/gift"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type report struct {
	Count     int             `json:"count"`
	Questions []gift.Question `json:"questions"`
	Issues    []gift.Issue    `json:"issues"`
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("giftcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "Path to the markup file, or - for stdin")
	output := fs.String("output", "", "Path to write the result (optional, defaults to stdout)")
	verbose := fs.Bool("verbose", false, "Enable verbose output")
	strict := fs.Bool("strict", false, "Exit non-zero when any question has issues")
	roundtrip := fs.Bool("roundtrip", false, "Write normalized markup instead of JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *input == "" {
		fmt.Fprintf(stderr, "Error: input file required\n")
		fmt.Fprintf(stderr, "Usage: giftcheck -input <file> [-output <file>] [-verbose] [-strict] [-roundtrip]\n")
		return 2
	}

	var src io.Reader = stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: cannot read input file: %v\n", err)
			return 1
		}
		defer f.Close()
		src = f
	}

	qs, err := gift.ParseReader(src)
	if errors.Is(err, gift.ErrNoQuestions) {
		fmt.Fprintf(stderr, "Error: no valid questions found in %s\n", *input)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error reading input: %v\n", err)
		return 1
	}

	issues := []gift.Issue{}
	var verr *gift.ValidationError
	if errors.As(gift.Validate(qs), &verr) {
		issues = verr.Issues
	}
	for _, is := range issues {
		fmt.Fprintf(stderr, "warning: %s\n", is)
	}
	if *verbose {
		fmt.Fprintf(stderr, "Parsed %d questions, %d issue(s)\n", len(qs), len(issues))
		for i, q := range qs {
			fmt.Fprintf(stderr, "  %d. %s (%d options, answer %d)\n", i+1, q.Text, len(q.Options), q.CorrectAnswer)
		}
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating output file: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if *roundtrip {
		_, err = io.WriteString(out, gift.Serialize(qs))
	} else {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(report{Count: len(qs), Questions: qs, Issues: issues})
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}

	if *strict && len(issues) > 0 {
		return 1
	}
	return 0
}
