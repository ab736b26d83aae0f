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

// Package sdmss composes two Merkle tree signers into the shallow-deep
// scheme: a deep tree (height d) whose one-time keys certify successive
// shallow trees (height s), which do the actual message signing. Total
// capacity is 2^(s+d) signatures; the deep authentication cost is paid once
// per shallow tree and amortized over its 2^s signatures.
//
// The first signature issued under a freshly certified shallow tree carries
// the activation proof (the deep one-time signature over the shallow
// commitment); every later signature in that session omits it and relies on
// the verifier having cached the shallow root.
package sdmss

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/kdt"
	"github.com/mkey-core/go/src/crypto/wots"
)

var (
	// ErrCapacityExhausted signals that all 2^(s+d) signatures have been
	// issued. Terminal: the keypair must be rotated.
	ErrCapacityExhausted = errors.New("sdmss: signing capacity exhausted")

	// ErrUnknownShallowRoot is returned by a Verifier handed a signature
	// without an activation proof for a deep leaf session it has never seen
	// the activation-bearing signature of.
	ErrUnknownShallowRoot = errors.New("sdmss: no cached shallow root for this session")
)

// Activation certifies a shallow tree under the deep commitment: the
// shallow public key together with the deep tree's signature over its
// encoding.
type Activation struct {
	ShallowPub mss.PublicKey
	Deep       *mss.Signature
}

// Signature is one composed signature. DeepIndex identifies the shallow
// tree session in the deep seed's index space; Activation is non-nil only
// on the first signature of that session.
type Signature struct {
	DeepIndex  uint32
	Shallow    *mss.Signature
	Activation *Activation
}

// Signer owns the deep tree and cycles through shallow trees derived from
// its leaves. Sign irreversibly advances state; a Signer must have a single
// owner and all Sign/Update calls serialized through it.
type Signer struct {
	params   wots.Params
	deepSeed []byte
	s        int

	deep     *mss.Signer
	deepRoot mss.PublicKey // commitment captured at construction

	shallow    *mss.Signer
	shallowPub mss.PublicKey
	deepIndex  uint32      // seed-space index of the session's deep leaf
	pending    *Activation // attached to the next signature, then cleared
}

// NewSigner builds a composer from a master seed. The deep tree's 2^d
// one-time keys are generated up front; shallow trees are built lazily, one
// per activation.
func NewSigner(p wots.Params, masterSeed []byte, s, d int) (*Signer, error) {
	if s < 1 || d < 1 {
		return nil, fmt.Errorf("%w: heights s=%d d=%d", wots.ErrInvalidParameters, s, d)
	}
	if err := hashfn.CheckSeed(p.Oracle, masterSeed); err != nil {
		return nil, err
	}
	deepSeed := kdt.SubSeed(p.Oracle, masterSeed, kdt.LabelDeep)
	deep, err := mss.NewSigner(p, deepSeed, d)
	if err != nil {
		return nil, err
	}
	return &Signer{
		params:   p,
		deepSeed: deepSeed,
		s:        s,
		deep:     deep,
		deepRoot: deep.PublicKey(),
	}, nil
}

// GenerateSigner creates a composer from fresh OS entropy.
func GenerateSigner(p wots.Params, s, d int) (*Signer, error) {
	seed := make([]byte, p.Oracle.Size())
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("sdmss: keygen entropy: %w", err)
	}
	return NewSigner(p, seed, s, d)
}

// PublicKey returns the deep commitment captured at construction. This is
// the long-term verification key; it never changes unless Update is called.
func (c *Signer) PublicKey() mss.PublicKey { return c.deepRoot }

// Remaining returns how many signatures the composer can still issue:
// the active shallow tree's remainder plus 2^s per unused deep leaf.
func (c *Signer) Remaining() uint64 {
	var n uint64
	if c.shallow != nil {
		n = uint64(c.shallow.Remaining())
	}
	return n + uint64(c.deep.Remaining())<<uint(c.s)
}

// activate certifies a fresh shallow tree under the next unused deep leaf.
func (c *Signer) activate() error {
	if c.deep.Remaining() == 0 {
		return ErrCapacityExhausted
	}
	deepIndex := c.deep.NextSeedIndex()
	leafSeed := kdt.LeafSeed(c.params.Oracle, c.deepSeed, deepIndex)
	shallowSeed := kdt.SubSeed(c.params.Oracle, leafSeed, kdt.LabelShallow)

	shallow, err := mss.NewSigner(c.params, shallowSeed, c.s)
	if err != nil {
		return err
	}
	pub := shallow.PublicKey()
	deepSig, err := c.deep.Sign(pub.Encode())
	if err != nil {
		return err
	}

	c.shallow = shallow
	c.shallowPub = pub
	c.deepIndex = deepIndex
	c.pending = &Activation{ShallowPub: pub, Deep: deepSig}
	return nil
}

// Sign issues the next signature, certifying a fresh shallow tree first if
// none is active or the active one is spent. Fails with
// ErrCapacityExhausted once all 2^(s+d) leaves are consumed, leaving state
// unchanged.
func (c *Signer) Sign(msg []byte) (*Signature, error) {
	if c.shallow == nil || c.shallow.Remaining() == 0 {
		if err := c.activate(); err != nil {
			return nil, err
		}
	}
	ssig, err := c.shallow.Sign(msg)
	if err != nil {
		return nil, err
	}
	sig := &Signature{
		DeepIndex:  c.deepIndex,
		Shallow:    ssig,
		Activation: c.pending,
	}
	c.pending = nil
	return sig, nil
}

// Update refreshes the long-term commitment to cover only the unused deep
// leaves, renumbered from zero, and returns it. The active shallow session
// is discarded: its activation proof chains to the superseded commitment,
// so the next Sign certifies a fresh shallow tree under the new one.
// Signatures issued earlier verify only against the commitment current when
// they were issued.
func (c *Signer) Update() (mss.PublicKey, error) {
	pub, err := c.deep.Update()
	if err != nil {
		return mss.PublicKey{}, err
	}
	c.deepRoot = pub
	c.shallow = nil
	c.pending = nil
	return pub, nil
}
