package crack

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hasbyte1/go-dictcrack/hashing"
)

// Kind is the closed set of comparison strategies a [Plan] can use.
type Kind int

const (
	// KindDigest compares the hex digest of a fixed algorithm with a hex
	// target, ignoring case.
	KindDigest Kind = iota + 1

	// KindScryptRaw derives scrypt with caller-supplied parameters and
	// compares the hex output with a hex target, ignoring case.
	KindScryptRaw

	// KindScryptEncoded verifies against a self-describing "$scrypt$" target.
	KindScryptEncoded

	// KindPreHashed verifies against a bcrypt or argon2 reference hash.
	KindPreHashed
)

func (k Kind) String() string {
	switch k {
	case KindDigest:
		return "digest"
	case KindScryptRaw:
		return "scrypt-raw"
	case KindScryptEncoded:
		return "scrypt-encoded"
	case KindPreHashed:
		return "pre-hashed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Request is everything [Resolve] needs to build a [Plan].
type Request struct {
	// Scheme is the user supplied scheme name (case-insensitive, aliases
	// accepted).  Empty means detect it from Target.
	Scheme string

	// Target is the hex digest, "$scrypt$" string or bcrypt/argon2 reference
	// to recover.  Surrounding whitespace is ignored.
	Target string

	// Scrypt holds raw scrypt parameters.  It is required for hex scrypt
	// targets and ignored for encoded ones, apart from MaxMemory.
	Scrypt *hashing.ScryptOptions

	// MaxMemory caps the scrypt working set of an encoded target.  Zero
	// falls back to Scrypt.MaxMemory, then to
	// [hashing.DefaultScryptMaxMemory].
	MaxMemory uint64

	// Registry resolves fixed digests.  Nil selects
	// [hashing.DefaultRegistry].
	Registry *hashing.Registry
}

// Plan is a resolved, immutable comparison strategy: one of the [Kind]
// variants plus the scheme instance it needs.
type Plan struct {
	kind   Kind
	scheme hashing.Scheme
	target string

	digest   hashing.Algorithm     // KindDigest
	scrypt   *hashing.ScryptScheme // KindScryptRaw
	verifier hashing.Verifier      // KindScryptEncoded, KindPreHashed
}

// Resolve validates req and builds the matching [Plan].  All parameter and
// format problems are reported here, before any candidate is read.
func Resolve(req Request) (*Plan, error) {
	target := strings.TrimSpace(req.Target)
	if target == "" {
		return nil, ErrEmptyTarget
	}

	scheme, err := resolveScheme(req.Scheme, target)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case hashing.SchemeScrypt:
		return resolveScrypt(target, req.Scrypt, req.MaxMemory)

	case hashing.SchemeBcrypt:
		s, err := hashing.NewBcryptScheme(target)
		if err != nil {
			return nil, err
		}
		return &Plan{kind: KindPreHashed, scheme: scheme, target: target, verifier: s}, nil

	case hashing.SchemeArgon2i, hashing.SchemeArgon2id:
		s, err := hashing.NewArgon2Scheme(target)
		if err != nil {
			return nil, err
		}
		if s.Variant() != scheme {
			return nil, fmt.Errorf("%w: hash is %s, not %s", hashing.ErrAlgorithmMismatch, s.Variant(), scheme)
		}
		return &Plan{kind: KindPreHashed, scheme: scheme, target: target, verifier: s}, nil
	}

	reg := req.Registry
	if reg == nil {
		reg = hashing.DefaultRegistry()
	}
	alg, err := reg.Algorithm(scheme)
	if err != nil {
		return nil, err
	}
	want := -1
	if sized, ok := alg.(interface{ HexLen() int }); ok {
		want = sized.HexLen()
	}
	if err := checkHexTarget(target, want); err != nil {
		return nil, err
	}
	return &Plan{kind: KindDigest, scheme: scheme, target: target, digest: alg}, nil
}

func resolveScheme(name, target string) (hashing.Scheme, error) {
	if name == "" {
		s, ok := hashing.DetectScheme(target)
		if !ok {
			return "", ErrSchemeRequired
		}
		return s, nil
	}
	return hashing.ParseScheme(name)
}

func resolveScrypt(target string, opts *hashing.ScryptOptions, maxMemory uint64) (*Plan, error) {
	if maxMemory == 0 && opts != nil {
		maxMemory = opts.MaxMemory
	}

	// Anything starting with '$' is meant to be self-describing; let the
	// codec say what is wrong with it.
	if strings.HasPrefix(target, "$") {
		v, err := hashing.NewScryptVerifier(target, maxMemory)
		if err != nil {
			return nil, err
		}
		return &Plan{kind: KindScryptEncoded, scheme: hashing.SchemeScrypt, target: target, verifier: v}, nil
	}

	if opts == nil {
		return nil, ErrScryptParamsRequired
	}
	s, err := hashing.NewScryptScheme(*opts)
	if err != nil {
		return nil, err
	}
	if err := checkHexTarget(target, 2*s.KeyLen()); err != nil {
		return nil, err
	}
	return &Plan{kind: KindScryptRaw, scheme: hashing.SchemeScrypt, target: target, scrypt: s}, nil
}

// checkHexTarget validates a hex target; want < 0 skips the length check.
func checkHexTarget(target string, want int) error {
	if _, err := hex.DecodeString(target); err != nil {
		return fmt.Errorf("%w: %q is not a hex digest: %v", ErrInvalidTarget, target, err)
	}
	if want >= 0 && len(target) != want {
		return fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidTarget, want, len(target))
	}
	return nil
}

// Kind returns the comparison strategy.
func (p *Plan) Kind() Kind { return p.kind }

// Scheme returns the resolved scheme.
func (p *Plan) Scheme() hashing.Scheme { return p.scheme }

// Target returns the normalised target.
func (p *Plan) Target() string { return p.target }

// String describes the plan and its parameters for diagnostics.  It never
// includes candidate values.
func (p *Plan) String() string {
	switch p.kind {
	case KindScryptRaw:
		return fmt.Sprintf("%s (%s, n=%d r=%d p=%d key_len=%d salt_len=%d)",
			p.scheme, p.kind, p.scrypt.N(), p.scrypt.R(), p.scrypt.P(), p.scrypt.KeyLen(), len(p.scrypt.Salt()))
	case KindScryptEncoded:
		e := p.verifier.(*hashing.ScryptVerifier).Encoded()
		return fmt.Sprintf("%s (%s, n=%d r=%d p=%d key_len=%d salt_len=%d)",
			p.scheme, p.kind, e.Cost(), e.BlockSize, e.Parallelism, len(e.Digest), len(e.Salt))
	default:
		return fmt.Sprintf("%s (%s)", p.scheme, p.kind)
	}
}

// attempt reports whether candidate reproduces the target.
func (p *Plan) attempt(candidate []byte) (bool, error) {
	switch p.kind {
	case KindDigest:
		return strings.EqualFold(p.digest.DigestHex(candidate), p.target), nil
	case KindScryptRaw:
		dk, err := p.scrypt.DeriveRaw(candidate)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(hex.EncodeToString(dk), p.target), nil
	case KindScryptEncoded, KindPreHashed:
		return p.verifier.Matches(candidate)
	default:
		return false, fmt.Errorf("crack: unresolved plan kind %v", p.kind)
	}
}
