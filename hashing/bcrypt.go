package hashing

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the work factor used by [EncodeBcrypt] when the
	// caller passes zero.
	DefaultBcryptCost = 12
)

// BcryptScheme verifies candidates against an opaque bcrypt reference hash
// ("$2a$", "$2b$" or "$2y$"), which already embeds its own salt and cost.
//
// # Asymmetry with digest schemes
//
// BcryptScheme implements [Verifier].  It also implements [Algorithm] so it
// can sit in the same registry as true digests, but that side is
// verification in disguise: DigestHex(candidate) returns the reference
// string unchanged when candidate verifies and "" otherwise.  That is not a
// hash function (not injective, not collision-free); it only behaves
// correctly for equality against the reference.  Prefer
// [BcryptScheme.Matches], which also separates "does not match" from
// "could not verify".
//
// # Thread safety
//
// BcryptScheme is immutable after construction and safe for concurrent use.
type BcryptScheme struct {
	reference string
	cost      int
}

// NewBcryptScheme checks that reference looks like a bcrypt hash and that
// its cost can be read.  A non-bcrypt prefix is [ErrAlgorithmMismatch];
// an unreadable cost is [ErrInvalidHash].
func NewBcryptScheme(reference string) (*BcryptScheme, error) {
	if d, ok := DetectScheme(reference); !ok || d != SchemeBcrypt {
		return nil, fmt.Errorf("%w: hash does not appear to be bcrypt", ErrAlgorithmMismatch)
	}
	cost, err := bcrypt.Cost([]byte(reference))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return &BcryptScheme{reference: reference, cost: cost}, nil
}

// Name returns "bcrypt".
func (s *BcryptScheme) Name() string { return string(SchemeBcrypt) }

// Reference returns the reference hash.
func (s *BcryptScheme) Reference() string { return s.reference }

// Cost returns the work factor encoded in the reference.
func (s *BcryptScheme) Cost() int { return s.cost }

// Matches verifies candidate against the reference in constant time.
// Returns (false, nil) on mismatch; never returns
// bcrypt.ErrMismatchedHashAndPassword.
func (s *BcryptScheme) Matches(candidate []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(s.reference), candidate)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("hashing: bcrypt: %w", err)
	}
	return true, nil
}

// Digest returns the reference bytes when candidate verifies, nil otherwise.
func (s *BcryptScheme) Digest(candidate []byte) []byte {
	if ok, _ := s.Matches(candidate); ok {
		return []byte(s.reference)
	}
	return nil
}

// DigestHex returns the reference when candidate verifies and "" on a
// mismatch or a verification error.  See the type documentation.
func (s *BcryptScheme) DigestHex(candidate []byte) string {
	if ok, _ := s.Matches(candidate); ok {
		return s.reference
	}
	return ""
}

// EncodeBcrypt hashes password with a fresh salt and returns the Modular
// Crypt Format string (e.g. "$2a$12$...").  A cost of zero selects
// [DefaultBcryptCost].
//
// bcrypt rejects passwords longer than 72 bytes.
func EncodeBcrypt(password []byte, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidParameters, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", fmt.Errorf("hashing: bcrypt: failed to hash password: %w", err)
	}
	return string(hash), nil
}
