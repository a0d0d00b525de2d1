package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/sha3"

	"github.com/hasbyte1/go-dictcrack/internal/md2"
	"github.com/hasbyte1/go-dictcrack/internal/md6"
)

// FixedDigest is an unsalted, parameterless [Algorithm] backed by a
// [hash.Hash] constructor.  Each call to Digest uses a fresh hash state, so
// a FixedDigest is immutable after construction and safe for concurrent use.
type FixedDigest struct {
	scheme Scheme
	size   int
	newFn  func() hash.Hash
}

var fixedConstructors = map[Scheme]func() hash.Hash{
	SchemeMD2:     md2.New,
	SchemeMD4:     md4.New,
	SchemeMD5:     md5.New,
	SchemeMD6:     md6.New,
	SchemeSHA1:    sha1.New,
	SchemeSHA256:  sha256.New,
	SchemeSHA512:  sha512.New,
	SchemeSHA3256: sha3.New256,
}

// FixedSchemes lists the parameterless digest schemes, in the order they are
// registered by [NewDefaultRegistry].
var FixedSchemes = []Scheme{
	SchemeMD2, SchemeMD4, SchemeMD5, SchemeMD6,
	SchemeSHA1, SchemeSHA256, SchemeSHA512, SchemeSHA3256,
}

// NewFixedDigest returns the fixed digest for s, or [ErrUnknownScheme] when s
// is not a parameterless digest (scrypt, bcrypt and argon2 have their own
// constructors).
func NewFixedDigest(s Scheme) (*FixedDigest, error) {
	fn, ok := fixedConstructors[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a fixed digest", ErrUnknownScheme, s)
	}
	return &FixedDigest{scheme: s, size: fn().Size(), newFn: fn}, nil
}

// Name returns the scheme identifier, e.g. "sha3-256".
func (d *FixedDigest) Name() string { return string(d.scheme) }

// Scheme returns the typed scheme identifier.
func (d *FixedDigest) Scheme() Scheme { return d.scheme }

// Size returns the digest length in bytes.
func (d *FixedDigest) Size() int { return d.size }

// HexLen returns the length of the hex rendering of a digest.
func (d *FixedDigest) HexLen() int { return d.size * 2 }

func (d *FixedDigest) Digest(input []byte) []byte {
	h := d.newFn()
	h.Write(input)
	return h.Sum(nil)
}

func (d *FixedDigest) DigestHex(input []byte) string {
	return hex.EncodeToString(d.Digest(input))
}
