package crack

import (
	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/hasbyte1/go-dictcrack/wordlist"
)

// Observer is notified at the fixed points of a scan.  Implementations must
// not retain the candidate's Value slice.
type Observer interface {
	Started(plan *Plan)
	Attempt(c wordlist.Candidate, matched bool, err error)
	Warned(w Warning)
	Finished(r Result)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) Started(*Plan)                           {}
func (NopObserver) Attempt(wordlist.Candidate, bool, error) {}
func (NopObserver) Warned(Warning)                          {}
func (NopObserver) Finished(Result)                         {}

// LoggerObserver writes scan progress to a bosh logger.  Candidate values
// are only logged when tracing is enabled.
type LoggerObserver struct {
	logger boshlog.Logger
	logTag string
	trace  bool
}

func NewLoggerObserver(logger boshlog.Logger, traceCandidates bool) *LoggerObserver {
	return &LoggerObserver{logger: logger, logTag: "crack", trace: traceCandidates}
}

func (o *LoggerObserver) Started(plan *Plan) {
	o.logger.Info(o.logTag, "Scanning with %s", plan)
}

func (o *LoggerObserver) Attempt(c wordlist.Candidate, matched bool, err error) {
	if !o.trace {
		return
	}
	if err != nil {
		o.logger.Debug(o.logTag, "Line %d %q: %s", c.Line, c.Value, err)
		return
	}
	o.logger.Debug(o.logTag, "Line %d %q: matched=%t", c.Line, c.Value, matched)
}

func (o *LoggerObserver) Warned(w Warning) {
	o.logger.Warn(o.logTag, "Skipping %s", w)
}

func (o *LoggerObserver) Finished(r Result) {
	if r.Found {
		o.logger.Info(o.logTag, "Match on line %d after %d attempts", r.Line, r.Attempts)
		return
	}
	o.logger.Info(o.logTag, "No match after %d attempts (skipped %d, failed %d, truncated %t)",
		r.Attempts, r.Skipped, r.Failed, r.Truncated)
}
