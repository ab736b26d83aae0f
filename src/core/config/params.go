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

// go/src/core/config/params.go
package config

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidParameters marks a configuration rejected at construction.
// Parameter errors are terminal: the caller must reconfigure, there is
// nothing to retry.
var ErrInvalidParameters = errors.New("config: invalid parameters")

// Params is the full configuration surface of the signature core.
type Params struct {
	// N is the oracle digest length in bytes (16 or 32).
	N int `json:"n"`
	// W is the Winternitz base, a power of two between 4 and 256.
	W int `json:"w"`
	// S is the shallow tree height.
	S int `json:"s"`
	// D is the deep tree height.
	D int `json:"d"`
	// Hash names the oracle instantiation; empty means "sha256".
	Hash string `json:"hash,omitempty"`
}

// Default is the benchmark configuration: 128-bit digests, w=16, a 4-leaf
// shallow tree cycled through a 128-leaf deep tree.
func Default() Params {
	return Params{N: 16, W: 16, S: 2, D: 7, Hash: "sha256"}
}

// Test is the small configuration used for end-to-end exercises: total
// capacity 16 signatures across 4 shallow tree generations.
func Test() Params {
	return Params{N: 32, W: 16, S: 2, D: 2, Hash: "sha256"}
}

// Validate fails fast on any out-of-range field.
func (p Params) Validate() error {
	if p.N != 16 && p.N != 32 {
		return fmt.Errorf("%w: n=%d (want 16 or 32)", ErrInvalidParameters, p.N)
	}
	if p.W < 4 || p.W > 256 || bits.OnesCount(uint(p.W)) != 1 {
		return fmt.Errorf("%w: w=%d (want a power of two in [4,256])", ErrInvalidParameters, p.W)
	}
	if p.S < 1 || p.D < 1 {
		return fmt.Errorf("%w: s=%d d=%d (both heights must be >= 1)", ErrInvalidParameters, p.S, p.D)
	}
	if p.S+p.D > 40 {
		return fmt.Errorf("%w: s+d=%d exceeds supported capacity", ErrInvalidParameters, p.S+p.D)
	}
	return nil
}

// HashName returns the configured oracle name, defaulting to sha256.
func (p Params) HashName() string {
	if p.Hash == "" {
		return "sha256"
	}
	return p.Hash
}

// Capacity returns the total number of signatures, 2^(s+d).
func (p Params) Capacity() uint64 {
	return 1 << uint(p.S+p.D)
}
