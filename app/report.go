package app

import (
	"fmt"
	"io"

	"github.com/nbutton23/zxcvbn-go"

	"github.com/hasbyte1/go-dictcrack/crack"
)

// Report is the console summary of one scan.
type Report struct {
	RunID  string
	Plan   string
	Source string
	Result crack.Result
}

// Write renders the report.  The recovered password is printed together with
// its zxcvbn strength estimate.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	fmt.Fprintf(w, "Scheme:    %s\n", r.Plan)
	fmt.Fprintf(w, "Wordlist:  %s\n", r.Source)

	res := r.Result
	if res.Found {
		strength := zxcvbn.PasswordStrength(res.Candidate, nil)
		fmt.Fprintf(w, "Match found at line %d: %s\n", res.Line, res.Candidate)
		fmt.Fprintf(w, "Strength:  %d/4 (crack time %s)\n", strength.Score, strength.CrackTimeDisplay)
	} else {
		fmt.Fprintln(w, "No match found.")
	}

	fmt.Fprintf(w, "Attempts:  %d (skipped %d, failed %d)\n", res.Attempts, res.Skipped, res.Failed)
	if res.Truncated {
		fmt.Fprintln(w, "Stopped at the candidate limit.")
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "Warning:   %s\n", warning)
	}
}
