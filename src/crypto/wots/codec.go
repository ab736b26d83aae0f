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

package wots

import (
	"fmt"

	"github.com/mkey-core/go/src/crypto/hashfn"
)

// Encode serializes a signature as pkHash || pkSeed || chain_0 .. chain_{l-1},
// all fields n bytes wide.
func (s *Signature) Encode() []byte {
	n := s.Params.Oracle.Size()
	out := make([]byte, 0, s.Params.SignatureSize())
	out = append(out, s.PKHash[:n]...)
	out = append(out, s.PKSeed[:n]...)
	for _, c := range s.Chains {
		out = append(out, c[:n]...)
	}
	return out
}

// DecodeSignature parses the fixed-width encoding produced by Encode.
func DecodeSignature(p Params, data []byte) (*Signature, error) {
	n := p.Oracle.Size()
	if len(data) != p.SignatureSize() {
		return nil, fmt.Errorf("%w: signature is %d bytes, want %d",
			hashfn.ErrInvalidLength, len(data), p.SignatureSize())
	}
	sig := &Signature{
		Params: p,
		PKHash: clone(data[:n]),
		PKSeed: clone(data[n : 2*n]),
		Chains: make([][]byte, p.l),
	}
	for i := 0; i < p.l; i++ {
		off := (2 + i) * n
		sig.Chains[i] = clone(data[off : off+n])
	}
	return sig, nil
}
