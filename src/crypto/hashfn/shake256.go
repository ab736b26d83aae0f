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

package hashfn

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// shake256Oracle instantiates the oracle with SHAKE256, squeezing exactly n
// bytes per call. An XOF makes PRF2 a single sponge invocation for any n.
type shake256Oracle struct {
	n int
}

// NewShake256 returns a SHAKE256 oracle with output size n bytes.
func NewShake256(n int) (Oracle, error) {
	if n < 8 || n > 64 {
		return nil, fmt.Errorf("%w: shake256 output size %d", ErrInvalidLength, n)
	}
	return &shake256Oracle{n: n}, nil
}

func (o *shake256Oracle) Name() string { return "shake256" }
func (o *shake256Oracle) Size() int    { return o.n }

func (o *shake256Oracle) Sum(parts ...[]byte) []byte {
	h := sha3.NewShake256()
	for _, p := range parts {
		h.Write(p)
	}
	out := make([]byte, o.n)
	h.Read(out)
	return out
}

func (o *shake256Oracle) Hash2(a, b []byte) []byte {
	return o.Sum(a, b)
}

func (o *shake256Oracle) PRF(seed []byte, ctr uint32) []byte {
	return o.Sum(ctrMix(seed, ctr))
}

func (o *shake256Oracle) PRF2(seed []byte, ctr uint32) (key, mask []byte) {
	h := sha3.NewShake256()
	h.Write(ctrMix(seed, ctr))
	out := make([]byte, 2*o.n)
	h.Read(out)
	return out[:o.n], out[o.n:]
}
