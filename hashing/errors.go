package hashing

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	ok, err := hashing.VerifyEncoded(encoded, candidate)
//	if errors.Is(err, hashing.ErrInvalidHash) {
//	    // encoded string is malformed
//	}
var (
	// ErrInvalidHash is returned when an encoded hash string cannot be parsed.
	// Every [FormatError] unwraps to it.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised hash string")

	// ErrBadStructure is the [FormatError] reason for a string that does not
	// have the expected segments, scheme marker or parameter syntax.
	ErrBadStructure = errors.New("hashing: malformed hash structure")

	// ErrMissingParam is the [FormatError] reason for a required parameter
	// that is absent from the parameter segment.
	ErrMissingParam = errors.New("hashing: missing required parameter")

	// ErrBadEncoding is the [FormatError] reason for a salt or digest segment
	// that is not valid base64.
	ErrBadEncoding = errors.New("hashing: invalid base64 field")

	// ErrInvalidParameters is returned by scheme constructors when a
	// configuration invariant is violated.  No derivation is attempted.
	ErrInvalidParameters = errors.New("hashing: invalid scheme parameters")

	// ErrDerivation is returned when a key-derivation primitive rejects its
	// parameters at run time, for example because the working set would not
	// fit in addressable memory.
	ErrDerivation = errors.New("hashing: key derivation failed")

	// ErrUnknownScheme is returned when a scheme name is not recognised or
	// has not been registered.
	ErrUnknownScheme = errors.New("hashing: unknown scheme")

	// ErrEmptySchemeName is returned by [Registry.Register] when the supplied
	// scheme name is an empty string.
	ErrEmptySchemeName = errors.New("hashing: scheme name must not be empty")

	// ErrNilAlgorithm is returned by [Registry.Register] when a nil
	// [Algorithm] is supplied.
	ErrNilAlgorithm = errors.New("hashing: algorithm must not be nil")

	// ErrAlgorithmMismatch is returned when a reference hash was produced by
	// a different scheme than the one asked to verify it.
	ErrAlgorithmMismatch = errors.New("hashing: hash was produced by a different algorithm")
)

// FormatReason classifies why an encoded hash was rejected.
type FormatReason int

const (
	// BadStructure: wrong segment count, wrong scheme marker, duplicated or
	// unparseable parameter.
	BadStructure FormatReason = iota + 1
	// MissingParam: a required parameter key is absent.
	MissingParam
	// BadEncoding: the salt or digest is not valid base64.
	BadEncoding
)

func (r FormatReason) String() string {
	switch r {
	case BadStructure:
		return "bad structure"
	case MissingParam:
		return "missing parameter"
	case BadEncoding:
		return "bad encoding"
	default:
		return fmt.Sprintf("FormatReason(%d)", int(r))
	}
}

// FormatError describes a malformed self-describing hash string.
//
// It unwraps to both [ErrInvalidHash] and the reason-specific sentinel
// ([ErrBadStructure], [ErrMissingParam] or [ErrBadEncoding]):
//
//	var fe *hashing.FormatError
//	if errors.As(err, &fe) && fe.Reason == hashing.MissingParam {
//	    log.Printf("hash lacks %q", fe.Param)
//	}
type FormatError struct {
	Reason FormatReason

	// Param names the offending parameter key, if any.
	Param string

	// Field names the offending base64 field ("salt" or "digest"), if any.
	Field string

	// Detail is a human-readable explanation.
	Detail string
}

func (e *FormatError) Error() string {
	switch {
	case e.Param != "":
		return fmt.Sprintf("hashing: %s %q: %s", e.Reason, e.Param, e.Detail)
	case e.Field != "":
		return fmt.Sprintf("hashing: %s in %s: %s", e.Reason, e.Field, e.Detail)
	default:
		return fmt.Sprintf("hashing: %s: %s", e.Reason, e.Detail)
	}
}

func (e *FormatError) Unwrap() []error {
	switch e.Reason {
	case BadStructure:
		return []error{ErrInvalidHash, ErrBadStructure}
	case MissingParam:
		return []error{ErrInvalidHash, ErrMissingParam}
	case BadEncoding:
		return []error{ErrInvalidHash, ErrBadEncoding}
	default:
		return []error{ErrInvalidHash}
	}
}

func badStructure(format string, args ...any) *FormatError {
	return &FormatError{Reason: BadStructure, Detail: fmt.Sprintf(format, args...)}
}
