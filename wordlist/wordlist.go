// Package wordlist reads candidate passwords, one per line, as a lazy
// forward-only sequence.
package wordlist

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
	"os"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

// ErrConsumed is reported by [Reader.Err] when [Reader.All] is ranged over a
// second time.  A Reader does not rewind its source.
var ErrConsumed = errors.New("wordlist: sequence already consumed")

// Candidate is one line of a wordlist.
type Candidate struct {
	// Line is the 1-indexed position of the candidate in its source.
	Line int

	// Value holds the line without its terminator ("\n" or "\r\n").  It is
	// not guaranteed to be valid UTF-8.
	Value []byte
}

// Reader yields the lines of an io.Reader as [Candidate] values.
type Reader struct {
	r        *bufio.Reader
	closer   io.Closer
	consumed bool
	err      error
}

// NewReader wraps r.  The caller keeps ownership of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Open opens path through fs for reading.  The returned Reader owns the file
// and must be closed.
func Open(fs boshsys.FileSystem, path string) (*Reader, error) {
	f, err := fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Opening wordlist '%s'", path)
	}
	return &Reader{r: bufio.NewReader(f), closer: f}, nil
}

// All returns the candidates in source order.  Iteration stops at end of
// input, at the first read error (reported by [Reader.Err]), or when the
// consumer stops ranging; no line past that point is read.
//
// The sequence is single-use.
func (r *Reader) All() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if r.consumed {
			if r.err == nil {
				r.err = ErrConsumed
			}
			return
		}
		r.consumed = true

		for line := 1; ; line++ {
			raw, err := r.r.ReadBytes('\n')
			if len(raw) > 0 {
				if !yield(Candidate{Line: line, Value: trimEOL(raw)}) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				r.err = bosherr.WrapErrorf(err, "Reading wordlist line %d", line)
				return
			}
		}
	}
}

// Err returns the error that ended iteration early, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file when the Reader was created by [Open].
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return bosherr.WrapError(err, "Closing wordlist")
	}
	return nil
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}

// FromStrings returns an in-memory sequence, numbering words from 1.
func FromStrings(words ...string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for i, w := range words {
			if !yield(Candidate{Line: i + 1, Value: []byte(w)}) {
				return
			}
		}
	}
}
