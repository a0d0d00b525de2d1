// Package md6 implements the unkeyed MD6-256 hash in its default tree mode
// (L = 64, 4-to-1 compression tree).
//
// Level-1 chaining values are retained until Sum so the upper levels of the
// tree can be built once the message length is known; memory use is a
// quarter of the input size. That is fine for wordlist candidates and not
// meant for hashing large files.
package md6

import (
	"encoding/binary"
	"hash"
)

const (
	// Size is the size of an MD6-256 digest in bytes.
	Size = 32

	// BlockSize is the MD6 data block size in bytes (64 words).
	BlockSize = 512

	n      = 89 // words fed to the compression function
	c      = 16 // chaining value words
	blockW = 64 // data words per block
	modeL  = 64
	rounds = 40 + Size*8/4

	s0    uint64 = 0x0123456789abcdef
	sMask uint64 = 0x7311c2812425cfa0
)

// q holds the first 960 bits of the fractional part of sqrt(6).
var q = [15]uint64{
	0x7311c2812425cfa0, 0x6432286434aac8e7, 0xb60450e9ef68b7c1,
	0xe8fb23908d9f06f1, 0xdd2e76cba691e5bf, 0x0cd0d63b2c30bc41,
	0x1f8ccf6823058f8a, 0x54e5ed5b88e3775d, 0x4ad12aae0a6d6031,
	0x3e7f16bb88222e0d, 0x8af8671d3fb50c2c, 0x995ad1178bd25c31,
	0xc878c1dd04c4b633, 0x3b72066c7a1552ac, 0x0d6f3522631effcb,
}

// Per-step shift amounts, indexed by step mod 16.
var (
	rightShift = [c]uint{10, 5, 13, 10, 11, 12, 2, 7, 14, 15, 7, 13, 11, 7, 6, 12}
	leftShift  = [c]uint{11, 24, 9, 16, 15, 9, 27, 15, 6, 2, 29, 8, 15, 5, 31, 9}
)

type chainingValue [c]uint64

type digest struct {
	buf    [BlockSize]byte
	nx     int
	leaves []chainingValue
}

// New returns a new hash.Hash computing MD6-256.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

// Sum returns the MD6-256 digest of data.
func Sum(data []byte) [Size]byte {
	d := new(digest)
	_, _ = d.Write(data)
	var out [Size]byte
	copy(out[:], d.Sum(nil))
	return out
}

func (d *digest) Reset() {
	d.nx = 0
	d.leaves = d.leaves[:0]
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

// Write buffers one block ahead: a full block is only compressed once more
// data arrives, because a lone block must be flagged as the final one.
func (d *digest) Write(p []byte) (int, error) {
	written := len(p)
	for len(p) > 0 {
		if d.nx == BlockSize {
			d.leaves = append(d.leaves, compress(d.buf[:], 1, uint64(len(d.leaves)), false))
			d.nx = 0
		}
		k := copy(d.buf[d.nx:], p)
		d.nx += k
		p = p[k:]
	}
	return written, nil
}

func (d *digest) Sum(in []byte) []byte {
	var top chainingValue
	if len(d.leaves) == 0 {
		top = compress(d.buf[:d.nx], 1, 0, true)
	} else {
		cvs := make([]chainingValue, len(d.leaves), len(d.leaves)+1)
		copy(cvs, d.leaves)
		cvs = append(cvs, compress(d.buf[:d.nx], 1, uint64(len(cvs)), false))
		top = reduce(cvs)
	}

	var out [c * 8]byte
	for i, w := range top {
		binary.BigEndian.PutUint64(out[i*8:], w)
	}
	return append(in, out[len(out)-Size:]...)
}

// reduce climbs the tree from level 2, packing four chaining values into
// each block, until a level consists of a single (final) block.
func reduce(cvs []chainingValue) chainingValue {
	for level := 2; ; level++ {
		final := len(cvs) <= 4
		next := make([]chainingValue, 0, (len(cvs)+3)/4)
		for i := 0; i < len(cvs); i += 4 {
			end := min(i+4, len(cvs))
			block := make([]byte, 0, BlockSize)
			for _, cv := range cvs[i:end] {
				for _, w := range cv {
					block = binary.BigEndian.AppendUint64(block, w)
				}
			}
			next = append(next, compress(block, level, uint64(i/4), final))
		}
		if final {
			return next[0]
		}
		cvs = next
	}
}

// compress runs the MD6 compression function over one zero-padded block.
func compress(data []byte, level int, index uint64, final bool) chainingValue {
	var block [BlockSize]byte
	copy(block[:], data)
	padBits := uint64(BlockSize-len(data)) * 8

	var z uint64
	if final {
		z = 1
	}

	var a [n + rounds*c]uint64
	copy(a[:len(q)], q[:])
	// a[15:23] is the all-zero key.
	a[23] = uint64(level)<<56 | index
	a[24] = uint64(rounds)<<48 | uint64(modeL)<<40 | z<<36 | padBits<<20 | uint64(Size*8)
	for k := 0; k < blockW; k++ {
		a[25+k] = binary.BigEndian.Uint64(block[k*8:])
	}

	s := s0
	i := n
	for r := 0; r < rounds; r++ {
		for step := 0; step < c; step++ {
			x := s ^ a[i-n] ^ a[i-17]
			x ^= (a[i-18] & a[i-21]) ^ (a[i-31] & a[i-67])
			x ^= x >> rightShift[step]
			a[i] = x ^ (x << leftShift[step])
			i++
		}
		s = (s << 1) ^ (s >> 63) ^ (s & sMask)
	}

	var cv chainingValue
	copy(cv[:], a[len(a)-c:])
	return cv
}
