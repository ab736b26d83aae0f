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

// go/src/crypto/wots/params.go
package wots

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/mkey-core/go/src/crypto/hashfn"
)

// ErrInvalidParameters is returned for a Winternitz base outside the
// supported range or one that is not a power of two.
var ErrInvalidParameters = errors.New("wots: invalid parameters")

// Params fixes a WOTS+ instantiation: the hash oracle (output size n) and
// the Winternitz base w. L1 chains encode the message digest in base-w
// digits, L2 chains encode the checksum of those digits; the checksum chains
// are what make it infeasible to forge a signature by only walking forward
// along already-revealed chains.
type Params struct {
	Oracle hashfn.Oracle
	W      int

	logW    int
	l1      int
	l2      int
	l       int
	l2Bytes int
}

// NewParams validates w (a power of two, 4 <= w <= 256) and derives the
// chain counts for the oracle's digest size:
//
//	l1 = ceil(8n / log2 w)
//	l2 = floor(log_w(l1*(w-1))) + 1
func NewParams(o hashfn.Oracle, w int) (Params, error) {
	if w < 4 || w > 256 || bits.OnesCount(uint(w)) != 1 {
		return Params{}, fmt.Errorf("%w: w=%d", ErrInvalidParameters, w)
	}
	logW := bits.TrailingZeros(uint(w))
	l1 := (8*o.Size() + logW - 1) / logW

	// l2 is the number of base-w digits of the maximum checksum l1*(w-1).
	l2 := 0
	for x := l1 * (w - 1); x > 0; x /= w {
		l2++
	}

	return Params{
		Oracle:  o,
		W:       w,
		logW:    logW,
		l1:      l1,
		l2:      l2,
		l:       l1 + l2,
		l2Bytes: (l2*logW + 7) / 8,
	}, nil
}

// Chains returns the total chain count l.
func (p Params) Chains() int { return p.l }

// SignatureSize returns the encoded size of a one-time signature in bytes.
func (p Params) SignatureSize() int {
	return (2 + p.l) * p.Oracle.Size()
}
