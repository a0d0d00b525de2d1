package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

const (
	// DefaultArgon2Memory is the default memory cost in KiB (64 MiB).
	DefaultArgon2Memory uint32 = 64 * 1024

	// DefaultArgon2Time is the default number of iterations.
	DefaultArgon2Time uint32 = 3

	// DefaultArgon2Threads is the default degree of parallelism.
	DefaultArgon2Threads uint8 = 2

	// DefaultArgon2KeyLen is the default output key length in bytes.
	DefaultArgon2KeyLen uint32 = 32

	// DefaultArgon2SaltLen is the default random salt length in bytes.
	DefaultArgon2SaltLen uint32 = 16

	// DefaultArgon2MaxMemory is the largest memory cost, in KiB, that an
	// [Argon2Scheme] accepts from a reference hash (4 GiB).
	DefaultArgon2MaxMemory uint32 = 4 * 1024 * 1024

	// argon2Version is the Argon2 specification version encoded in hashes.
	argon2Version = argon2.Version // 0x13 = 19
)

// Argon2Options configures [EncodeArgon2].
type Argon2Options struct {
	// Memory is the memory cost in KiB.  Minimum: 8 * Threads.
	Memory uint32

	// Time is the number of passes over memory.  Minimum: 1.
	Time uint32

	// Threads is the degree of parallelism.  Minimum: 1.
	Threads uint8

	// KeyLen is the length of the derived key in bytes.  Minimum: 4.
	KeyLen uint32

	// SaltLen is the length of the random salt in bytes.  Minimum: 8.
	SaltLen uint32
}

// DefaultArgon2Options returns Argon2Options with the recommended defaults.
func DefaultArgon2Options() Argon2Options {
	return Argon2Options{
		Memory:  DefaultArgon2Memory,
		Time:    DefaultArgon2Time,
		Threads: DefaultArgon2Threads,
		KeyLen:  DefaultArgon2KeyLen,
		SaltLen: DefaultArgon2SaltLen,
	}
}

func validateArgon2Options(opts Argon2Options) error {
	if opts.Time < 1 {
		return fmt.Errorf("%w: argon2 time must be ≥ 1, got %d", ErrInvalidParameters, opts.Time)
	}
	if opts.Threads < 1 {
		return fmt.Errorf("%w: argon2 threads must be ≥ 1, got %d", ErrInvalidParameters, opts.Threads)
	}
	if opts.Memory < 8*uint32(opts.Threads) {
		return fmt.Errorf("%w: argon2 memory (%d KiB) must be ≥ 8×threads (%d KiB)",
			ErrInvalidParameters, opts.Memory, 8*uint32(opts.Threads))
	}
	if opts.KeyLen < 4 {
		return fmt.Errorf("%w: argon2 key_len must be ≥ 4, got %d", ErrInvalidParameters, opts.KeyLen)
	}
	if opts.SaltLen < 8 {
		return fmt.Errorf("%w: argon2 salt_len must be ≥ 8, got %d", ErrInvalidParameters, opts.SaltLen)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// PHC string format helpers
// ──────────────────────────────────────────────────────────────────────────────

// argon2Params holds parameters and raw values decoded from a PHC hash string.
type argon2Params struct {
	variant Scheme
	version uint32
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

// encodePHC serialises an Argon2 hash in PHC String Format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
//
// The base64 encoding is the standard alphabet without padding.
func encodePHC(variant Scheme, version, memory, time uint32, threads uint8, salt, hash []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		string(variant),
		version,
		memory,
		time,
		threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// decodePHC parses an Argon2 PHC hash string and returns its components.
//
// Expected format (6 dollar-delimited segments, first is empty):
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func decodePHC(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, badStructure("expected 5-segment PHC string, got %d segments", len(parts)-1)
	}

	var variant Scheme
	switch parts[1] {
	case string(SchemeArgon2i):
		variant = SchemeArgon2i
	case string(SchemeArgon2id):
		variant = SchemeArgon2id
	default:
		return nil, badStructure("unknown argon2 variant %q", parts[1])
	}

	version, err := parseKV(parts[2], "v")
	if err != nil {
		return nil, &FormatError{Reason: BadStructure, Param: "v", Detail: err.Error()}
	}

	kvs, err := parseParams(parts[3])
	if err != nil {
		return nil, badStructure("%v", err)
	}
	for _, key := range []string{"m", "t", "p"} {
		if _, ok := kvs[key]; !ok {
			return nil, &FormatError{Reason: MissingParam, Param: key, Detail: "required parameter not present"}
		}
	}
	if kvs["m"] > math.MaxUint32 || kvs["t"] > math.MaxUint32 || kvs["p"] > math.MaxUint8 {
		return nil, badStructure("parameter out of range in %q", parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, &FormatError{Reason: BadEncoding, Field: "salt", Detail: err.Error()}
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, &FormatError{Reason: BadEncoding, Field: "digest", Detail: err.Error()}
	}

	return &argon2Params{
		variant: variant,
		version: uint32(version),
		memory:  uint32(kvs["m"]),
		time:    uint32(kvs["t"]),
		threads: uint8(kvs["p"]),
		salt:    salt,
		hash:    hash,
	}, nil
}

// parseKV parses a "key=value" string and returns the uint64 value.
func parseKV(s, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected %q prefix in %q", prefix, s)
	}
	return strconv.ParseUint(s[len(prefix):], 10, 64)
}

// parseParams splits "m=65536,t=3,p=2" into a map.
func parseParams(s string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, kv := range strings.Split(s, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed param %q", kv)
		}
		v, err := strconv.ParseUint(kv[eq+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric value in %q: %v", kv, err)
		}
		out[kv[:eq]] = v
	}
	return out, nil
}

// randomSalt returns n cryptographically random bytes.
func randomSalt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("hashing: argon2: failed to generate salt: %w", err)
	}
	return b, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Argon2Scheme
// ──────────────────────────────────────────────────────────────────────────────

// Argon2Scheme verifies candidates against an Argon2i or Argon2id reference
// hash in PHC format.  The reference is parsed once at construction; every
// parameter needed to reproduce it is read from the string itself.
//
// Like [BcryptScheme] it is verification-shaped and implements [Verifier]
// only.
//
// # Thread safety
//
// Argon2Scheme is immutable after construction and safe for concurrent use.
type Argon2Scheme struct {
	reference string
	params    *argon2Params
}

// NewArgon2Scheme parses reference and validates its parameters.  A
// malformed string is a [*FormatError]; parameters that are structurally
// fine but unusable (zero time or threads, a key shorter than 4 bytes, a
// memory cost above [DefaultArgon2MaxMemory]) are [ErrInvalidParameters].
func NewArgon2Scheme(reference string) (*Argon2Scheme, error) {
	p, err := decodePHC(reference)
	if err != nil {
		return nil, err
	}
	if p.version != argon2Version {
		return nil, fmt.Errorf("%w: argon2 version %d is not supported", ErrInvalidParameters, p.version)
	}
	if p.time < 1 || p.threads < 1 {
		return nil, fmt.Errorf("%w: argon2 time and threads must be ≥ 1", ErrInvalidParameters)
	}
	if len(p.hash) < 4 {
		return nil, fmt.Errorf("%w: argon2 key must be ≥ 4 bytes, got %d", ErrInvalidParameters, len(p.hash))
	}
	if p.memory > DefaultArgon2MaxMemory {
		return nil, fmt.Errorf("%w: argon2 memory %d KiB exceeds limit of %d KiB",
			ErrInvalidParameters, p.memory, DefaultArgon2MaxMemory)
	}
	return &Argon2Scheme{reference: reference, params: p}, nil
}

// Name returns "argon2i" or "argon2id".
func (s *Argon2Scheme) Name() string { return string(s.params.variant) }

// Variant returns the Argon2 variant of the reference.
func (s *Argon2Scheme) Variant() Scheme { return s.params.variant }

// Reference returns the reference hash.
func (s *Argon2Scheme) Reference() string { return s.reference }

// Matches derives a key for candidate with the reference parameters and
// compares it in constant time.
func (s *Argon2Scheme) Matches(candidate []byte) (bool, error) {
	p := s.params
	keyLen := uint32(len(p.hash))
	var computed []byte
	if p.variant == SchemeArgon2id {
		computed = argon2.IDKey(candidate, p.salt, p.time, p.memory, p.threads, keyLen)
	} else {
		computed = argon2.Key(candidate, p.salt, p.time, p.memory, p.threads, keyLen)
	}
	return subtle.ConstantTimeCompare(computed, p.hash) == 1, nil
}

// EncodeArgon2 hashes password with a fresh random salt and returns a PHC
// string for variant ([SchemeArgon2i] or [SchemeArgon2id]).
func EncodeArgon2(variant Scheme, opts Argon2Options, password []byte) (string, error) {
	if variant != SchemeArgon2i && variant != SchemeArgon2id {
		return "", fmt.Errorf("%w: %q is not an argon2 variant", ErrUnknownScheme, variant)
	}
	if err := validateArgon2Options(opts); err != nil {
		return "", err
	}
	salt, err := randomSalt(opts.SaltLen)
	if err != nil {
		return "", err
	}
	var key []byte
	if variant == SchemeArgon2id {
		key = argon2.IDKey(password, salt, opts.Time, opts.Memory, opts.Threads, opts.KeyLen)
	} else {
		key = argon2.Key(password, salt, opts.Time, opts.Memory, opts.Threads, opts.KeyLen)
	}
	return encodePHC(variant, argon2Version, opts.Memory, opts.Time, opts.Threads, salt, key), nil
}
