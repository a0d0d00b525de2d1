package hashing

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const scryptPrefix = "$scrypt$"

// maxScryptCostLog2 keeps 2^ln within a uint64 that still fits an int.
const maxScryptCostLog2 = 62

// EncodedHash is the parsed form of a self-describing scrypt hash:
//
//	$scrypt$ln=<u8>,r=<u32>,p=<u32>$<base64 salt>$<base64 digest>
//
// Values are produced by [ParseEncoded] and consumed by [EncodedHash.Verify].
type EncodedHash struct {
	CostLog2    uint8
	BlockSize   uint32
	Parallelism uint32
	Salt        []byte
	Digest      []byte
}

// ParseEncoded decomposes s into an [EncodedHash].
//
// Every failure is a [*FormatError]:
//   - BadStructure: not exactly five '$' segments, a first segment that is
//     not empty, a scheme marker other than "scrypt", or an ln/r/p value that
//     is repeated or does not parse as its integer type;
//   - MissingParam: ln, r or p is absent (checked in that order);
//   - BadEncoding: the salt or digest is not standard base64.
//
// Parameter entries with unknown keys are ignored.
func ParseEncoded(s string) (*EncodedHash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 5 {
		return nil, badStructure("expected 5 '$'-delimited segments, got %d", len(parts))
	}
	if parts[0] != "" || parts[1] != string(SchemeScrypt) {
		return nil, badStructure("expected %q prefix, got %q", scryptPrefix, "$"+parts[1]+"$")
	}

	ln, r, p, err := parseScryptParams(parts[2])
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, &FormatError{Reason: BadEncoding, Field: "salt", Detail: err.Error()}
	}
	digest, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, &FormatError{Reason: BadEncoding, Field: "digest", Detail: err.Error()}
	}

	return &EncodedHash{
		CostLog2:    ln,
		BlockSize:   r,
		Parallelism: p,
		Salt:        salt,
		Digest:      digest,
	}, nil
}

// parseScryptParams reads "ln=14,r=8,p=1".
func parseScryptParams(seg string) (ln uint8, r, p uint32, err error) {
	seen := make(map[string]bool, 3)
	for _, kv := range strings.Split(seg, ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		var bitSize int
		switch key {
		case "ln":
			bitSize = 8
		case "r", "p":
			bitSize = 32
		default:
			continue
		}
		if seen[key] {
			return 0, 0, 0, &FormatError{Reason: BadStructure, Param: key, Detail: "parameter repeated"}
		}
		seen[key] = true

		v, perr := strconv.ParseUint(val, 10, bitSize)
		if perr != nil {
			return 0, 0, 0, &FormatError{
				Reason: BadStructure,
				Param:  key,
				Detail: fmt.Sprintf("value %q is not a %d-bit unsigned integer", val, bitSize),
			}
		}
		switch key {
		case "ln":
			ln = uint8(v)
		case "r":
			r = uint32(v)
		case "p":
			p = uint32(v)
		}
	}
	for _, key := range []string{"ln", "r", "p"} {
		if !seen[key] {
			return 0, 0, 0, &FormatError{Reason: MissingParam, Param: key, Detail: "required parameter not present"}
		}
	}
	return ln, r, p, nil
}

// Cost returns N = 2^ln, or 0 when ln is too large to represent.
func (e *EncodedHash) Cost() uint64 {
	if e.CostLog2 > maxScryptCostLog2 {
		return 0
	}
	return 1 << e.CostLog2
}

// Scheme rebuilds the scrypt scheme the hash was produced with.  KeyLen is
// the length of the decoded digest.  maxMemory of zero selects
// [DefaultScryptMaxMemory].
func (e *EncodedHash) Scheme(maxMemory uint64) (*ScryptScheme, error) {
	if e.CostLog2 == 0 || e.CostLog2 > maxScryptCostLog2 {
		return nil, fmt.Errorf("%w: scrypt ln must be in [1, %d], got %d",
			ErrInvalidParameters, maxScryptCostLog2, e.CostLog2)
	}
	return NewScryptScheme(ScryptOptions{
		N:         e.Cost(),
		R:         e.BlockSize,
		P:         e.Parallelism,
		Salt:      e.Salt,
		KeyLen:    len(e.Digest),
		MaxMemory: maxMemory,
	})
}

// Verify derives a key for candidate with the embedded parameters and
// compares it to the embedded digest in constant time.  A mismatch is
// (false, nil); invalid parameters and derivation failures are errors.
func (e *EncodedHash) Verify(candidate []byte, maxMemory uint64) (bool, error) {
	s, err := e.Scheme(maxMemory)
	if err != nil {
		return false, err
	}
	dk, err := s.DeriveRaw(candidate)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(dk, e.Digest) == 1, nil
}

// String renders the canonical encoding.
func (e EncodedHash) String() string {
	return fmt.Sprintf("%sln=%d,r=%d,p=%d$%s$%s",
		scryptPrefix, e.CostLog2, e.BlockSize, e.Parallelism,
		encodeB64(e.Salt), encodeB64(e.Digest))
}

// VerifyEncoded parses encoded and verifies candidate against it with the
// default memory limit.
//
//	ok, err := hashing.VerifyEncoded("$scrypt$ln=14,r=8,p=1$c2FsdA==$...", []byte("pw"))
func VerifyEncoded(encoded string, candidate []byte) (bool, error) {
	e, err := ParseEncoded(encoded)
	if err != nil {
		return false, err
	}
	return e.Verify(candidate, 0)
}

// ScryptVerifier adapts a parsed [EncodedHash] to the [Verifier] capability.
type ScryptVerifier struct {
	encoded   *EncodedHash
	maxMemory uint64
}

// NewScryptVerifier parses encoded once so that repeated Matches calls do not
// re-parse it.  maxMemory of zero selects [DefaultScryptMaxMemory].
func NewScryptVerifier(encoded string, maxMemory uint64) (*ScryptVerifier, error) {
	e, err := ParseEncoded(encoded)
	if err != nil {
		return nil, err
	}
	if _, err := e.Scheme(maxMemory); err != nil {
		return nil, err
	}
	return &ScryptVerifier{encoded: e, maxMemory: maxMemory}, nil
}

// Name returns "scrypt".
func (v *ScryptVerifier) Name() string { return string(SchemeScrypt) }

// Encoded returns the parsed reference.
func (v *ScryptVerifier) Encoded() EncodedHash { return *v.encoded }

func (v *ScryptVerifier) Matches(candidate []byte) (bool, error) {
	return v.encoded.Verify(candidate, v.maxMemory)
}
