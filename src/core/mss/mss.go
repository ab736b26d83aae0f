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

// Package mss implements the sequentially-updatable Merkle tree signature
// scheme: one Merkle tree of one-time keypairs consumed strictly in index
// order. Update shrinks the commitment to the still-unused leaves so that
// later signatures carry shorter authentication paths.
//
// A Signer must have a single owner; Sign and Update irreversibly advance
// state and are not safe for concurrent use. Verification is pure and may
// run in parallel against any number of signatures.
package mss

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/mkey-core/go/src/core/hashtree"
	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/kdt"
	"github.com/mkey-core/go/src/crypto/wots"
)

var (
	// ErrCapacityExhausted signals that every leaf has signed; the keypair
	// must be rotated, there is nothing to retry.
	ErrCapacityExhausted = errors.New("mss: signing capacity exhausted")
)

// PublicKey is the commitment of one tree generation: the Merkle root plus
// the leaf count it covers. Size shrinks with every Update.
type PublicKey struct {
	Root []byte
	Size uint32
}

// Signature carries everything a verifier needs besides the commitment:
// the tree-local leaf index, the one-time signature (whose embedded public
// key hash is the leaf value), and the sibling path to the root.
type Signature struct {
	Index uint32
	Wots  *wots.Signature
	Path  [][]byte
}

// Signer owns one tree generation. The only secret state is the seed; the
// consumed-prefix offset maps tree-local leaf indices back to the seed's
// index space so Update never re-derives a used leaf.
type Signer struct {
	params wots.Params
	seed   []byte

	offset uint32 // leaves consumed by earlier generations
	index  uint32 // next leaf within the current generation
	size   uint32 // leaves in the current generation
	tree   *hashtree.Tree
}

// NewSigner creates a fresh tree of height leaves 2^height from seed.
// Construction performs all 2^height one-time key generations up front.
func NewSigner(p wots.Params, seed []byte, height int) (*Signer, error) {
	if height < 1 || height > 31 {
		return nil, fmt.Errorf("%w: height %d", wots.ErrInvalidParameters, height)
	}
	if err := hashfn.CheckSeed(p.Oracle, seed); err != nil {
		return nil, err
	}
	s := &Signer{
		params: p,
		seed:   append([]byte(nil), seed...),
		size:   1 << uint(height),
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// GenerateSigner creates a signer from fresh OS entropy.
func GenerateSigner(p wots.Params, height int) (*Signer, error) {
	seed := make([]byte, p.Oracle.Size())
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("mss: keygen entropy: %w", err)
	}
	return NewSigner(p, seed, height)
}

// rebuild constructs the Merkle tree for the current (offset, size) window.
// No leaf row is cached: retained state stays at O(height) nodes, and the
// tree re-derives one-time keys when a retained path node must be replaced,
// which amortizes to O(height) leaf derivations per signature.
func (s *Signer) rebuild() error {
	base := s.offset
	leaf := func(i uint32) ([]byte, error) {
		kp, err := s.leafKeypair(base + i)
		if err != nil {
			return nil, err
		}
		return kp.PKHash, nil
	}
	tree, err := hashtree.New(s.params.Oracle, leaf, s.size, false)
	if err != nil {
		return err
	}
	s.tree = tree
	return nil
}

func (s *Signer) leafKeypair(seedIndex uint32) (*wots.Keypair, error) {
	leafSeed := kdt.LeafSeed(s.params.Oracle, s.seed, seedIndex)
	return wots.FromSeed(s.params, leafSeed)
}

// PublicKey returns the commitment for the current tree generation.
func (s *Signer) PublicKey() PublicKey {
	return PublicKey{Root: s.tree.Root(), Size: s.size}
}

// Remaining returns the number of unused leaves in the current generation.
func (s *Signer) Remaining() uint32 { return s.size - s.index }

// NextSeedIndex returns the seed-space index the next signature will
// consume. Composers use it to derive dependent key material before the
// leaf is actually spent.
func (s *Signer) NextSeedIndex() uint32 { return s.offset + s.index }

// Sign consumes the next leaf: one-time signs msg with it, attaches the
// authentication path, and advances the index. Once the last leaf is spent
// further calls fail with ErrCapacityExhausted and leave state untouched.
func (s *Signer) Sign(msg []byte) (*Signature, error) {
	if s.index >= s.size {
		return nil, ErrCapacityExhausted
	}
	kp, err := s.leafKeypair(s.offset + s.index)
	if err != nil {
		return nil, err
	}
	_, path, err := s.tree.NextLeaf()
	if err != nil {
		if errors.Is(err, hashtree.ErrExhausted) {
			return nil, ErrCapacityExhausted
		}
		return nil, err
	}

	sig := &Signature{
		Index: s.index,
		Wots:  kp.Sign(msg),
		Path:  path,
	}
	s.index++
	return sig, nil
}

// Update shrinks the tree to the size-index unused leaves, renumbered from
// zero, and returns the new commitment. The consumed prefix is discarded:
// its leaves are no longer members of the tree, so their old paths reject
// under the new root. Calling Update with nothing consumed, or after
// exhaustion, is a no-op returning the current commitment.
func (s *Signer) Update() (PublicKey, error) {
	if s.index == 0 || s.Remaining() == 0 {
		return s.PublicKey(), nil
	}
	s.offset += s.index
	s.size -= s.index
	s.index = 0
	if err := s.rebuild(); err != nil {
		return PublicKey{}, err
	}
	return s.PublicKey(), nil
}

// Verify checks sig over msg against the commitment pk: the one-time
// signature must verify self-contained, and its public key hash must chain
// up the path to pk.Root at position sig.Index of a pk.Size-leaf tree.
// Pure; never mutates anything.
func Verify(p wots.Params, msg []byte, sig *Signature, pk PublicKey) bool {
	if sig == nil || sig.Wots == nil {
		return false
	}
	if !sig.Wots.Verify(msg) {
		return false
	}
	return hashtree.VerifyPath(p.Oracle, sig.Wots.PKHash, sig.Index, pk.Size, sig.Path, pk.Root)
}
