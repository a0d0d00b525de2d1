package crack

import "errors"

// Sentinel errors returned by [Resolve].  Errors from the hashing package
// (format, parameter and mismatch errors) are passed through unchanged and
// can be matched with [errors.Is] against the hashing sentinels.
var (
	// ErrEmptyTarget is returned when no target hash was supplied.
	ErrEmptyTarget = errors.New("crack: target hash must not be empty")

	// ErrSchemeRequired is returned when no scheme was given and none can be
	// detected from the target (bare hex digests are not self-describing).
	ErrSchemeRequired = errors.New("crack: scheme must be specified for this target")

	// ErrInvalidTarget is returned when a hex target is not valid hex or has
	// the wrong length for the selected scheme.
	ErrInvalidTarget = errors.New("crack: invalid target hash")

	// ErrScryptParamsRequired is returned when a raw (hex) scrypt target is
	// given without n, r, p, salt and key length.
	ErrScryptParamsRequired = errors.New("crack: raw scrypt targets need explicit parameters")
)
