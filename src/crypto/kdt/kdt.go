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

// Package kdt is the key derivation tree: it expands one master seed plus an
// index into all per-leaf secret material, so a signer persists nothing but
// the seed and a counter. All functions are pure.
package kdt

import (
	"encoding/binary"

	"github.com/mkey-core/go/src/crypto/hashfn"
)

// Domain labels for SubSeed. Distinct labels yield independent-looking
// sub-seeds, keeping the deep tree, shallow trees and chain secrets from
// ever colliding.
const (
	LabelShallow = "shallow"
	LabelDeep    = "deep"
)

// LeafSeed derives the one-time keypair seed for a leaf. The index is
// big-endian encoded into an n-byte block so the derivation is fixed-width
// regardless of oracle size.
func LeafSeed(o hashfn.Oracle, treeSeed []byte, index uint32) []byte {
	idx := make([]byte, o.Size())
	binary.BigEndian.PutUint32(idx[:4], index)
	return o.Hash2(treeSeed, idx)
}

// SubSeed derives a labeled child seed from a parent seed.
func SubSeed(o hashfn.Oracle, seed []byte, label string) []byte {
	return o.Sum(seed, []byte(label))
}
