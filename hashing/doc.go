// Package hashing provides the digest and verification schemes a dictionary
// scan compares candidates with.
//
// # Architecture
//
// Two capabilities cover every scheme:
//
//   - [Algorithm]: digest-shaped.  Digest and DigestHex are pure functions of
//     the input and the configuration fixed at construction.
//   - [Verifier]: verification-shaped.  Matches answers whether a candidate
//     reproduces a reference that already embeds its own salt and cost.
//
// Three families ship with this package:
//
//   - [FixedDigest]: md2, md4, md5, md6 (MD6-256), sha1, sha256, sha512 and
//     sha3-256.  No configuration and no failure path.
//   - [ScryptScheme]: salted, memory-hard scrypt with explicit N, r, p, salt
//     and key length, plus the self-describing "$scrypt$" codec
//     ([ParseEncoded], [VerifyEncoded], [ScryptVerifier]).
//   - [BcryptScheme] and [Argon2Scheme]: pre-hashed references verified with
//     the scheme's own constant-time primitive.
//
// The [Registry] maps scheme names to shared [Algorithm] instances and is
// safe for concurrent use.
//
// # Quick start
//
//	md5, _ := hashing.DefaultRegistry().Algorithm(hashing.SchemeMD5)
//	md5.DigestHex([]byte("abc")) // "900150983cd24fb0d6963f7d28e17f72"
//
//	s, err := hashing.NewScryptScheme(hashing.ScryptOptions{
//	    N: 16384, R: 8, P: 1, Salt: []byte("salt"), KeyLen: 32,
//	})
//	encoded, _ := s.Encode([]byte("secret"))
//	ok, _ := hashing.VerifyEncoded(encoded, []byte("secret")) // true
//
// # scrypt hash format
//
//	$scrypt$ln=14,r=8,p=1$<base64 salt>$<base64 digest>
//
// ln is log2(N).  Salt and digest use standard, padded base64.  Malformed
// strings are rejected with a [*FormatError] whose Reason says which part is
// wrong; a wrong password is never an error.
//
// # Argon2 hash format
//
// Argon2 references use the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
package hashing
