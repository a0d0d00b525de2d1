package hashing

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/crypto/scrypt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

const (
	// DefaultScryptN is the default CPU/memory cost (2^14).
	DefaultScryptN uint64 = 1 << 14

	// DefaultScryptR is the default block size.
	DefaultScryptR uint32 = 8

	// DefaultScryptP is the default parallelism.
	DefaultScryptP uint32 = 1

	// DefaultScryptKeyLen is the default derived key length in bytes.
	DefaultScryptKeyLen = 32

	// MaxScryptKeyLen is the largest accepted derived key length in bytes.
	MaxScryptKeyLen = 1024

	// DefaultScryptMaxMemory caps the derivation working set (1 GiB).
	DefaultScryptMaxMemory uint64 = 1 << 30
)

// ScryptOptions configures a [ScryptScheme].
type ScryptOptions struct {
	// N is the CPU/memory cost.  Must be ≥ 2 and a power of two.
	N uint64

	// R is the block size.  Must be > 0.
	R uint32

	// P is the parallelism factor.  Must be > 0.
	P uint32

	// Salt is copied at construction time.  An empty salt is allowed.
	Salt []byte

	// KeyLen is the derived key length in bytes, in (0, [MaxScryptKeyLen]].
	KeyLen int

	// MaxMemory bounds the working set 128·R·(N+P) in bytes.  Zero selects
	// [DefaultScryptMaxMemory].  It is checked at derivation time.
	MaxMemory uint64
}

// DefaultScryptOptions returns the commonly used interactive-login parameters
// (N=16384, r=8, p=1, 32-byte key) with an empty salt.
func DefaultScryptOptions() ScryptOptions {
	return ScryptOptions{
		N:      DefaultScryptN,
		R:      DefaultScryptR,
		P:      DefaultScryptP,
		KeyLen: DefaultScryptKeyLen,
	}
}

func validateScryptOptions(opts ScryptOptions) error {
	if opts.KeyLen <= 0 || opts.KeyLen > MaxScryptKeyLen {
		return fmt.Errorf("%w: scrypt key_len must be in (0, %d], got %d",
			ErrInvalidParameters, MaxScryptKeyLen, opts.KeyLen)
	}
	if opts.N < 2 || opts.N&(opts.N-1) != 0 {
		return fmt.Errorf("%w: scrypt n must be ≥ 2 and a power of two, got %d",
			ErrInvalidParameters, opts.N)
	}
	if opts.R == 0 {
		return fmt.Errorf("%w: scrypt r must be > 0", ErrInvalidParameters)
	}
	if opts.P == 0 {
		return fmt.Errorf("%w: scrypt p must be > 0", ErrInvalidParameters)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ScryptScheme
// ──────────────────────────────────────────────────────────────────────────────

// ScryptScheme derives scrypt keys with a fixed parameter set.
//
// It implements [Algorithm] for raw, caller-parameterised digests compared
// as hex, and produces the self-describing "$scrypt$" encoding through
// [ScryptScheme.Encode].
//
// # Thread safety
//
// ScryptScheme is immutable after construction and safe for concurrent use.
type ScryptScheme struct {
	n         uint64
	r         uint32
	p         uint32
	salt      []byte
	keyLen    int
	maxMemory uint64
}

// NewScryptScheme validates opts and returns a scheme.  Any violated
// invariant is reported as [ErrInvalidParameters]; nothing is derived.
func NewScryptScheme(opts ScryptOptions) (*ScryptScheme, error) {
	if err := validateScryptOptions(opts); err != nil {
		return nil, err
	}
	maxMem := opts.MaxMemory
	if maxMem == 0 {
		maxMem = DefaultScryptMaxMemory
	}
	return &ScryptScheme{
		n:         opts.N,
		r:         opts.R,
		p:         opts.P,
		salt:      append([]byte(nil), opts.Salt...),
		keyLen:    opts.KeyLen,
		maxMemory: maxMem,
	}, nil
}

// Name returns "scrypt".
func (s *ScryptScheme) Name() string { return string(SchemeScrypt) }

// N returns the CPU/memory cost.
func (s *ScryptScheme) N() uint64 { return s.n }

// R returns the block size.
func (s *ScryptScheme) R() uint32 { return s.r }

// P returns the parallelism factor.
func (s *ScryptScheme) P() uint32 { return s.p }

// KeyLen returns the derived key length in bytes.
func (s *ScryptScheme) KeyLen() int { return s.keyLen }

// Salt returns a copy of the salt.
func (s *ScryptScheme) Salt() []byte { return append([]byte(nil), s.salt...) }

// CostLog2 returns log2(N).  N is a power of two, so this is exact.
func (s *ScryptScheme) CostLog2() uint8 { return uint8(bits.TrailingZeros64(s.n)) }

// Options returns the parameter set the scheme was built from.
func (s *ScryptScheme) Options() ScryptOptions {
	return ScryptOptions{
		N:         s.n,
		R:         s.r,
		P:         s.p,
		Salt:      s.Salt(),
		KeyLen:    s.keyLen,
		MaxMemory: s.maxMemory,
	}
}

// WorkingSet returns the approximate number of bytes a derivation allocates,
// 128·r·(N+p).  ok is false when the product does not fit in 64 bits.
func (s *ScryptScheme) WorkingSet() (size uint64, ok bool) {
	hi, lo := bits.Mul64(s.n+uint64(s.p), 128*uint64(s.r))
	return lo, hi == 0
}

// DeriveRaw computes KeyLen bytes of scrypt output over (password, salt).
//
// A parameter set the primitive rejects, or one whose working set exceeds
// MaxMemory or the address space, is reported as [ErrDerivation].
func (s *ScryptScheme) DeriveRaw(password []byte) ([]byte, error) {
	size, ok := s.WorkingSet()
	if !ok || s.n > math.MaxInt {
		return nil, fmt.Errorf("%w: scrypt n=%d r=%d p=%d overflows the address space",
			ErrDerivation, s.n, s.r, s.p)
	}
	if size > s.maxMemory {
		return nil, fmt.Errorf("%w: scrypt working set %d bytes exceeds limit of %d bytes",
			ErrDerivation, size, s.maxMemory)
	}
	if uint64(s.r) > math.MaxInt || uint64(s.p) > math.MaxInt {
		return nil, fmt.Errorf("%w: scrypt r=%d p=%d overflow int", ErrDerivation, s.r, s.p)
	}
	dk, err := scrypt.Key(password, s.salt, int(s.n), int(s.r), int(s.p), s.keyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	return dk, nil
}

// Digest returns the derived key, or nil when derivation fails.  Callers
// that need the failure reason use [ScryptScheme.DeriveRaw].
func (s *ScryptScheme) Digest(input []byte) []byte {
	dk, err := s.DeriveRaw(input)
	if err != nil {
		return nil
	}
	return dk
}

// DigestHex returns the lowercase hex of the derived key, or "" when
// derivation fails.
func (s *ScryptScheme) DigestHex(input []byte) string {
	dk, err := s.DeriveRaw(input)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(dk)
}

// Encode derives a key for password and renders it in the self-describing
// form:
//
//	$scrypt$ln=<log2 N>,r=<r>,p=<p>$<base64 salt>$<base64 key>
//
// Standard, padded base64 is used for both binary fields.
func (s *ScryptScheme) Encode(password []byte) (string, error) {
	dk, err := s.DeriveRaw(password)
	if err != nil {
		return "", err
	}
	return EncodedHash{
		CostLog2:    s.CostLog2(),
		BlockSize:   s.r,
		Parallelism: s.p,
		Salt:        s.salt,
		Digest:      dk,
	}.String(), nil
}

// VerifyHex reports whether candidate derives to the hex-encoded key
// expectedHex (case-insensitive).  A malformed hex string is
// [ErrInvalidHash]; a derivation failure is [ErrDerivation].
func (s *ScryptScheme) VerifyHex(expectedHex string, candidate []byte) (bool, error) {
	want, err := hex.DecodeString(expectedHex)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	got, err := s.DeriveRaw(candidate)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// encodeB64 is the binary field encoding of the "$scrypt$" format.
func encodeB64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
