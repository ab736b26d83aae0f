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

// Package wots implements the Winternitz one-time signature engine (WOTS+).
//
// The public key hash is mixed into the message digest before the base-w
// digits are computed, which binds every signature to its keypair and allows
// shorter signatures for the same security target. A keypair must never sign
// two distinct messages; the owning tree enforces this by never re-deriving
// a consumed leaf index.
package wots

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/mkey-core/go/src/crypto/hashfn"
)

// Keypair is a WOTS+ keypair. The chain start secrets are derived from
// skSeed on demand and are never stored.
type Keypair struct {
	Params Params
	PKHash []byte // compressed public key, n bytes
	PKSeed []byte // public seed for chain keys and bitmasks
	skSeed []byte
}

// Signature is a WOTS+ signature: one revealed chain value per digit, plus
// the public seed and public key hash the verifier recompresses against.
type Signature struct {
	Params Params
	PKHash []byte
	PKSeed []byte
	Chains [][]byte
}

// Generate creates a keypair from a fresh random seed.
func Generate(p Params) (*Keypair, error) {
	seed := make([]byte, p.Oracle.Size())
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("wots: keygen entropy: %w", err)
	}
	return FromSeed(p, seed)
}

// FromSeed deterministically derives a keypair: the public seed is
// PRF(skSeed, l), each chain start is PRF(skSeed, i), each tip is the start
// iterated w-1 steps, and the public key is the oracle's compression of the
// public seed and all l tips into n bytes.
func FromSeed(p Params, skSeed []byte) (*Keypair, error) {
	if err := hashfn.CheckSeed(p.Oracle, skSeed); err != nil {
		return nil, err
	}
	o := p.Oracle

	pkSeed := o.PRF(skSeed, uint32(p.l))
	parts := make([][]byte, 0, p.l+1)
	parts = append(parts, pkSeed)
	for i := 0; i < p.l; i++ {
		secret := o.PRF(skSeed, uint32(i))
		parts = append(parts, p.chain(secret, p.W-1, i, 0, pkSeed))
	}

	sk := make([]byte, len(skSeed))
	copy(sk, skSeed)
	return &Keypair{
		Params: p,
		PKHash: o.Sum(parts...),
		PKSeed: pkSeed,
		skSeed: sk,
	}, nil
}

// Sign reveals, for each digit of the bound message digest, the chain value
// at position digit. The caller owns one-time semantics.
func (kp *Keypair) Sign(msg []byte) *Signature {
	p := kp.Params
	cycles := p.digits(msg, kp.PKHash)

	chains := make([][]byte, p.l)
	for i, c := range cycles {
		secret := p.Oracle.PRF(kp.skSeed, uint32(i))
		chains[i] = p.chain(secret, int(c), i, 0, kp.PKSeed)
	}
	return &Signature{
		Params: p,
		PKHash: clone(kp.PKHash),
		PKSeed: clone(kp.PKSeed),
		Chains: chains,
	}
}

// Verify completes each revealed chain the remaining w-1-digit steps,
// recompresses, and compares against the embedded public key hash in
// constant time. It returns false for any malformed length and never errors.
func (s *Signature) Verify(msg []byte) bool {
	p := s.Params
	n := p.Oracle.Size()
	if len(s.PKHash) != n || len(s.PKSeed) != n || len(s.Chains) != p.l {
		return false
	}
	for _, c := range s.Chains {
		if len(c) != n {
			return false
		}
	}

	cycles := p.digits(msg, s.PKHash)
	parts := make([][]byte, 0, p.l+1)
	parts = append(parts, s.PKSeed)
	for i, c := range cycles {
		parts = append(parts, p.chain(s.Chains[i], p.W-1-int(c), i, int(c), s.PKSeed))
	}
	return subtle.ConstantTimeCompare(p.Oracle.Sum(parts...), s.PKHash) == 1
}

// chain applies steps iterations of the keyed, masked hash to in, where the
// iteration at absolute chain position start+c uses the key and bitmask
// PRF2(pkSeed, chainIdx<<8 | position). Positions are below w <= 256, so
// chain index and position pack into one counter without overlap.
func (p Params) chain(in []byte, steps, chainIdx, start int, pkSeed []byte) []byte {
	out := clone(in)
	for c := 0; c < steps; c++ {
		key, mask := p.Oracle.PRF2(pkSeed, uint32(chainIdx<<8|(start+c)))
		for j := range out {
			out[j] ^= mask[j]
		}
		out = p.Oracle.Sum(key, out)
	}
	return out
}

// digits computes the l base-w digits a message signs: l1 digits of
// H(pkHash || H(msg)), then l2 digits of the checksum sum(w-1-digit),
// left-aligned into the checksum byte window.
func (p Params) digits(msg, pkHash []byte) []uint8 {
	o := p.Oracle
	digest := o.Sum(pkHash, o.Sum(msg))

	out := make([]uint8, p.l)
	baseW(digest, out[:p.l1], p.logW)

	csum := 0
	for _, d := range out[:p.l1] {
		csum += p.W - 1 - int(d)
	}
	csum <<= (8 - (p.l2*p.logW)%8) % 8

	var be [4]byte
	binary.BigEndian.PutUint32(be[:], uint32(csum))
	baseW(be[4-p.l2Bytes:], out[p.l1:], p.logW)
	return out
}

// baseW converts a byte string into base-2^logW symbols, most significant
// bits first, zero-padding at the tail when the input runs out of bits
// (which happens for bases whose digit width does not divide 8).
func baseW(in []byte, out []uint8, logW int) {
	var acc uint32
	bits := 0
	idx := 0
	for i := range out {
		if bits < logW {
			if idx < len(in) {
				acc = acc<<8 | uint32(in[idx])
				idx++
				bits += 8
			} else {
				acc <<= uint(logW - bits)
				bits = logW
			}
		}
		out[i] = uint8(acc >> uint(bits-logW) & (1<<logW - 1))
		bits -= logW
		acc &= 1<<uint(bits) - 1
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
