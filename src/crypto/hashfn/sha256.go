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
	"crypto/sha256"
	"fmt"
)

// sha256Oracle is the SHA-256/8n oracle: plain SHA-256 truncated to n bytes.
// This is the default instantiation for n = 16 and n = 32.
type sha256Oracle struct {
	n int
}

// NewSha256 returns a SHA-256/8n oracle with output size n bytes.
func NewSha256(n int) (Oracle, error) {
	if n < 8 || n > sha256.Size {
		return nil, fmt.Errorf("%w: sha256 output size %d", ErrInvalidLength, n)
	}
	return &sha256Oracle{n: n}, nil
}

func (o *sha256Oracle) Name() string { return "sha256" }
func (o *sha256Oracle) Size() int    { return o.n }

func (o *sha256Oracle) Sum(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)[:o.n]
}

func (o *sha256Oracle) Hash2(a, b []byte) []byte {
	return o.Sum(a, b)
}

func (o *sha256Oracle) PRF(seed []byte, ctr uint32) []byte {
	d := sha256.Sum256(ctrMix(seed, ctr))
	out := make([]byte, o.n)
	copy(out, d[:o.n])
	return out
}

// PRF2 splits a single SHA-256 digest into key and mask when both halves fit,
// which is one compression call instead of two for n <= 16.
func (o *sha256Oracle) PRF2(seed []byte, ctr uint32) (key, mask []byte) {
	if 2*o.n <= sha256.Size {
		d := sha256.Sum256(ctrMix(seed, ctr))
		key = make([]byte, o.n)
		mask = make([]byte, o.n)
		copy(key, d[:o.n])
		copy(mask, d[o.n:2*o.n])
		return key, mask
	}
	return o.PRF(seed, ctr), o.PRF(seed, ^ctr)
}
