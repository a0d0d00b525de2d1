package crack

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/hasbyte1/go-dictcrack/wordlist"
)

// WarningKind classifies a per-candidate problem.
type WarningKind int

const (
	// WarnInvalidUTF8: the line is not valid UTF-8 and was not attempted.
	WarnInvalidUTF8 WarningKind = iota + 1

	// WarnAttemptFailed: the scheme could not evaluate the candidate
	// (derivation or verification error).  It is counted as a non-match.
	WarnAttemptFailed
)

func (k WarningKind) String() string {
	switch k {
	case WarnInvalidUTF8:
		return "invalid utf-8"
	case WarnAttemptFailed:
		return "attempt failed"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a recovered per-candidate failure.  It never ends a scan.
type Warning struct {
	Line int
	Kind WarningKind
	Err  error
}

func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", w.Line, w.Kind, w.Err)
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Kind)
}

// Result is the outcome of [Engine.Scan].
type Result struct {
	// Found is true when a candidate reproduced the target.  Line and
	// Candidate are only meaningful in that case.
	Found     bool
	Line      int
	Candidate string

	// Attempts counts candidates handed to the scheme, including the match.
	Attempts int

	// Skipped counts lines that were not attempted (invalid UTF-8).
	Skipped int

	// Failed counts attempts the scheme could not evaluate.
	Failed int

	// Truncated is set when the scan stopped after MaxCandidates attempts
	// without a match.  Nothing past the last attempt is pulled, so the
	// sequence may or may not have had more candidates.
	Truncated bool

	Warnings []Warning
}

// Options configures an [Engine].
type Options struct {
	// MaxCandidates bounds the number of attempts.  Once it is reached no
	// further candidate is pulled.  Zero means no limit.
	MaxCandidates int

	// Observer receives progress callbacks.  Nil selects [NopObserver].
	Observer Observer
}

// Engine runs a single-pass, in-order scan of a candidate sequence.
type Engine struct {
	maxCandidates int
	observer      Observer
}

func NewEngine(opts Options) *Engine {
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Engine{maxCandidates: opts.MaxCandidates, observer: obs}
}

// Scan ranges over candidates once, in order, and stops at the first
// candidate that reproduces the plan's target; later candidates are never
// pulled from the sequence.  Invalid UTF-8 lines and per-candidate scheme
// errors are recorded as warnings and the scan continues.
func (e *Engine) Scan(plan *Plan, candidates iter.Seq[wordlist.Candidate]) Result {
	var res Result
	e.observer.Started(plan)

	for c := range candidates {
		if !utf8.Valid(c.Value) {
			res.Skipped++
			e.warn(&res, Warning{Line: c.Line, Kind: WarnInvalidUTF8})
			continue
		}

		res.Attempts++
		ok, err := plan.attempt(c.Value)
		e.observer.Attempt(c, ok, err)
		if err != nil {
			res.Failed++
			e.warn(&res, Warning{Line: c.Line, Kind: WarnAttemptFailed, Err: err})
		} else if ok {
			res.Found = true
			res.Line = c.Line
			res.Candidate = string(c.Value)
			break
		}

		if e.maxCandidates > 0 && res.Attempts >= e.maxCandidates {
			res.Truncated = true
			break
		}
	}

	e.observer.Finished(res)
	return res
}

func (e *Engine) warn(res *Result, w Warning) {
	res.Warnings = append(res.Warnings, w)
	e.observer.Warned(w)
}
