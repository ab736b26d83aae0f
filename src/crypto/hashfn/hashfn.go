// MIT License
//
// Copyright (c) 2025 mkey-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// go/src/crypto/hashfn/hashfn.go
package hashfn

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors returned by oracle constructors and seed validation.
var (
	ErrInvalidLength = errors.New("hashfn: invalid input length")
	ErrUnknownOracle = errors.New("hashfn: unknown oracle name")
)

// Oracle is the hash function and PRF every tree and chain computation is
// built on. An oracle has a fixed output size n; all digests, seeds, chain
// values and Merkle nodes are exactly n bytes. Swapping the oracle must not
// require changes to any signature or tree logic.
type Oracle interface {
	// Name identifies the instantiation ("sha256", "shake256", "aes-mmo").
	Name() string

	// Size returns the output length n in bytes.
	Size() int

	// Sum hashes the concatenation of parts and truncates to n bytes.
	Sum(parts ...[]byte) []byte

	// Hash2 combines two n-byte nodes into their n-byte parent.
	Hash2(a, b []byte) []byte

	// PRF derives an n-byte pseudorandom value from an n-byte seed and a
	// counter. Used for chain start secrets and the public seed.
	PRF(seed []byte, ctr uint32) []byte

	// PRF2 derives two independent n-byte values (a hash key and a chain
	// bitmask) from an n-byte seed and a counter.
	PRF2(seed []byte, ctr uint32) (key, mask []byte)
}

// New constructs a named oracle with output size n bytes.
func New(name string, n int) (Oracle, error) {
	switch name {
	case "sha256":
		return NewSha256(n)
	case "shake256":
		return NewShake256(n)
	case "aes-mmo":
		return NewAesMMO(n)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOracle, name)
}

// CheckSeed validates that seed has the oracle's exact output length.
func CheckSeed(o Oracle, seed []byte) error {
	if len(seed) != o.Size() {
		return fmt.Errorf("%w: seed is %d bytes, want %d", ErrInvalidLength, len(seed), o.Size())
	}
	return nil
}

// ctrMix XORs the big-endian counter into the first four bytes of seed.
// This is the domain-separation step shared by the PRF constructions: the
// same seed with distinct counters yields independent-looking outputs.
func ctrMix(seed []byte, ctr uint32) []byte {
	data := make([]byte, len(seed))
	copy(data, seed)
	var be [4]byte
	binary.BigEndian.PutUint32(be[:], ctr)
	for i := 0; i < 4 && i < len(data); i++ {
		data[i] ^= be[i]
	}
	return data
}
