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

// go/src/core/sdmss/verifier.go
package sdmss

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/crypto/wots"
)

// maxCachedRoots bounds the Verifier's session cache. Sessions evict in
// insertion order; 64 comfortably covers interleaved verification of every
// practical deep height.
const maxCachedRoots = 64

// VerifyActivated checks a signature that carries its own activation proof,
// without any session context: the activation must chain the shallow
// commitment to deepPub, and the message signature must chain to that
// shallow commitment. Returns false for signatures without an activation
// block.
func VerifyActivated(p wots.Params, msg []byte, sig *Signature, deepPub mss.PublicKey) bool {
	if sig == nil || sig.Activation == nil {
		return false
	}
	act := sig.Activation
	if !mss.Verify(p, act.ShallowPub.Encode(), act.Deep, deepPub) {
		return false
	}
	return mss.Verify(p, msg, sig.Shallow, act.ShallowPub)
}

// Verifier checks composed signatures against one deep commitment,
// remembering the shallow commitment each activation proof certifies so
// that the activation-less signatures of the same session can be checked
// later. Verification never mutates signer state, but the cache makes a
// Verifier single-goroutine; wrap it in a lock to share.
type Verifier struct {
	params wots.Params
	deep   mss.PublicKey
	roots  *orderedmap.OrderedMap[uint32, mss.PublicKey]
}

// NewVerifier builds a verifier trusting the given deep commitment.
func NewVerifier(p wots.Params, deepPub mss.PublicKey) *Verifier {
	return &Verifier{
		params: p,
		deep:   deepPub,
		roots:  orderedmap.NewOrderedMap[uint32, mss.PublicKey](),
	}
}

// Verify checks sig over msg. A signature with an activation proof is
// self-contained; on success its shallow commitment is cached under
// sig.DeepIndex. A signature without one needs the cached commitment of an
// earlier activation-bearing signature for the same session and fails with
// ErrUnknownShallowRoot if the cache has none. A false return with nil
// error means the signature simply does not authenticate.
func (v *Verifier) Verify(msg []byte, sig *Signature) (bool, error) {
	if sig == nil || sig.Shallow == nil {
		return false, nil
	}
	if sig.Activation != nil {
		if !VerifyActivated(v.params, msg, sig, v.deep) {
			return false, nil
		}
		v.cache(sig.DeepIndex, sig.Activation.ShallowPub)
		return true, nil
	}
	pub, ok := v.roots.Get(sig.DeepIndex)
	if !ok {
		return false, ErrUnknownShallowRoot
	}
	return mss.Verify(v.params, msg, sig.Shallow, pub), nil
}

func (v *Verifier) cache(deepIndex uint32, pub mss.PublicKey) {
	v.roots.Set(deepIndex, pub)
	for v.roots.Len() > maxCachedRoots {
		v.roots.Delete(v.roots.Front().Key)
	}
}
