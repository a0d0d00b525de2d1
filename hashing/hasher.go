package hashing

import (
	"fmt"
	"strings"
)

// Scheme identifies a hashing or key-derivation scheme.
// Using a named string type prevents accidental confusion with plain strings.
type Scheme string

const (
	SchemeMD2     Scheme = "md2"
	SchemeMD4     Scheme = "md4"
	SchemeMD5     Scheme = "md5"
	SchemeMD6     Scheme = "md6" // MD6-256
	SchemeSHA1    Scheme = "sha1"
	SchemeSHA256  Scheme = "sha256"
	SchemeSHA512  Scheme = "sha512"
	SchemeSHA3256 Scheme = "sha3-256"

	// SchemeScrypt selects scrypt, either with raw parameters compared as hex
	// or through the self-describing "$scrypt$" encoding.
	SchemeScrypt Scheme = "scrypt"

	// SchemeBcrypt selects verification against a bcrypt reference hash.
	SchemeBcrypt Scheme = "bcrypt"

	// SchemeArgon2i and SchemeArgon2id select verification against a PHC
	// formatted Argon2 reference hash.
	SchemeArgon2i  Scheme = "argon2i"
	SchemeArgon2id Scheme = "argon2id"
)

// aliases maps alternative spellings accepted by [ParseScheme].
var aliases = map[string]Scheme{
	"sha2":     SchemeSHA256,
	"sha-256":  SchemeSHA256,
	"sha-1":    SchemeSHA1,
	"sha-512":  SchemeSHA512,
	"sha3":     SchemeSHA3256,
	"sha3_256": SchemeSHA3256,
	"md6-256":  SchemeMD6,
}

// ParseScheme normalises a user supplied scheme name (case-insensitive,
// common aliases such as "sha2" and "sha3" accepted).  It does not check
// whether the scheme is registered anywhere.
func ParseScheme(name string) (Scheme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", ErrEmptySchemeName
	}
	if s, ok := aliases[key]; ok {
		return s, nil
	}
	switch s := Scheme(key); s {
	case SchemeMD2, SchemeMD4, SchemeMD5, SchemeMD6, SchemeSHA1, SchemeSHA256,
		SchemeSHA512, SchemeSHA3256, SchemeScrypt, SchemeBcrypt,
		SchemeArgon2i, SchemeArgon2id:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// Algorithm is the digest-shaped capability shared by every scheme that can
// produce output for a candidate.
//
// Digest must be a pure function of its input and the configuration fixed at
// construction time: no hidden mutable state and no memoisation across
// calls.  A single instance is therefore safe to reuse for an unbounded
// candidate sequence.
type Algorithm interface {
	// Name returns the scheme identifier, e.g. "md5" or "scrypt".
	Name() string

	// Digest returns the raw digest of input.
	Digest(input []byte) []byte

	// DigestHex returns the lowercase hex rendering of Digest.
	DigestHex(input []byte) string
}

// Verifier is the verification-shaped capability of schemes whose reference
// value already embeds its own salt and cost.  Such schemes cannot produce a
// stable digest for a candidate; they can only answer whether a candidate
// reproduces the reference.
//
// Matches returns (true, nil) on a match and (false, nil) on a genuine
// mismatch.  Any other failure (malformed reference, candidate rejected by
// the primitive) is returned as an error and never folded into false.
type Verifier interface {
	Name() string
	Matches(candidate []byte) (bool, error)
}

// DetectScheme inspects a self-describing hash string and returns the
// [Scheme] that produced it.  It is a best-effort heuristic based on the
// prefix and does not validate the rest of the string.
//
// The second return value is false when the format is not recognised, which
// is the case for bare hex digests.
func DetectScheme(hash string) (Scheme, bool) {
	switch {
	case strings.HasPrefix(hash, scryptPrefix):
		return SchemeScrypt, true
	case strings.HasPrefix(hash, "$argon2id$"):
		return SchemeArgon2id, true
	case strings.HasPrefix(hash, "$argon2i$"):
		return SchemeArgon2i, true
	// bcrypt hashes start with $2a$, $2b$, or $2y$
	case strings.HasPrefix(hash, "$2a$"),
		strings.HasPrefix(hash, "$2b$"),
		strings.HasPrefix(hash, "$2y$"):
		return SchemeBcrypt, true
	default:
		return "", false
	}
}

// IsVerificationOnly reports whether s is a scheme that can only verify a
// candidate against a reference hash (bcrypt, argon2).
func IsVerificationOnly(s Scheme) bool {
	switch s {
	case SchemeBcrypt, SchemeArgon2i, SchemeArgon2id:
		return true
	default:
		return false
	}
}
