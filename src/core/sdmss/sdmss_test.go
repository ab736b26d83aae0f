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

package sdmss

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

func testParams(t *testing.T, n int) wots.Params {
	t.Helper()
	o, err := hashfn.NewSha256(n)
	if err != nil {
		t.Fatal(err)
	}
	p, err := wots.NewParams(o, 16)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func testSigner(t *testing.T, p wots.Params, s, d int) *Signer {
	t.Helper()
	seed := bytes.Repeat([]byte{0xa7}, p.Oracle.Size())
	c, err := NewSigner(p, seed, s, d)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Full lifecycle at n=32, w=16, s=2, d=2: capacity 16, one activation
// proof per shallow tree, hard stop on the 17th signature.
func TestFullLifecycle(t *testing.T) {
	p := testParams(t, 32)
	c := testSigner(t, p, 2, 2)
	deepRoot := c.PublicKey()
	v := NewVerifier(p, deepRoot)

	if got := c.Remaining(); got != 16 {
		t.Fatalf("fresh composer Remaining() = %d, want 16", got)
	}

	for i := 0; i < 16; i++ {
		msg := []byte(fmt.Sprintf("message %d", i))
		sig, err := c.Sign(msg)
		if err != nil {
			t.Fatalf("signature %d: %v", i, err)
		}

		// The first signature of each shallow tree, and only that one,
		// carries the activation proof.
		wantActivation := i%4 == 0
		if (sig.Activation != nil) != wantActivation {
			t.Fatalf("signature %d: activation present = %v, want %v",
				i, sig.Activation != nil, wantActivation)
		}

		ok, err := v.Verify(msg, sig)
		if err != nil {
			t.Fatalf("signature %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("signature %d does not authenticate", i)
		}
		if ok, _ := v.Verify([]byte("something else"), sig); ok {
			t.Fatalf("signature %d accepted for altered message", i)
		}
	}

	if got := c.Remaining(); got != 0 {
		t.Fatalf("Remaining() = %d after full consumption", got)
	}
	if _, err := c.Sign([]byte("17th")); !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("17th signature: got %v, want ErrCapacityExhausted", err)
	}
}

func TestActivatedSignatureIsSelfContained(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 2)
	deepRoot := c.PublicKey()

	sig, err := c.Sign([]byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Activation == nil {
		t.Fatal("first signature lacks activation proof")
	}
	if !VerifyActivated(p, []byte("first"), sig, deepRoot) {
		t.Fatal("activation-bearing signature rejected without session state")
	}
	if VerifyActivated(p, []byte("wrong"), sig, deepRoot) {
		t.Fatal("altered message accepted")
	}

	second, err := c.Sign([]byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	if second.Activation != nil {
		t.Fatal("second signature carries an activation proof")
	}
	if VerifyActivated(p, []byte("second"), second, deepRoot) {
		t.Fatal("VerifyActivated accepted a signature without an activation block")
	}
}

func TestUnknownShallowRoot(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 2)

	if _, err := c.Sign([]byte("activation goes unseen")); err != nil {
		t.Fatal(err)
	}
	sig, err := c.Sign([]byte("orphan"))
	if err != nil {
		t.Fatal(err)
	}

	// A verifier that never saw the activation-bearing signature has no
	// root to check against.
	fresh := NewVerifier(p, c.PublicKey())
	if _, err := fresh.Verify([]byte("orphan"), sig); !errors.Is(err, ErrUnknownShallowRoot) {
		t.Fatalf("got %v, want ErrUnknownShallowRoot", err)
	}
}

func TestTamperedActivationRejected(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 2)
	v := NewVerifier(p, c.PublicKey())

	sig, err := c.Sign([]byte("msg"))
	if err != nil {
		t.Fatal(err)
	}
	sig.Activation.ShallowPub.Root[0] ^= 0x01
	if ok, _ := v.Verify([]byte("msg"), sig); ok {
		t.Fatal("forged shallow commitment accepted")
	}
	// Rejection must not poison the cache for the session.
	sig.Activation.ShallowPub.Root[0] ^= 0x01
	later, err := c.Sign([]byte("later"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify([]byte("later"), later); !errors.Is(err, ErrUnknownShallowRoot) {
		t.Fatalf("got %v, want ErrUnknownShallowRoot after rejected activation", err)
	}
}

func TestSignaturesAcrossTreesUseDistinctSessions(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 1, 2)

	indices := make(map[uint32]int)
	for i := 0; i < 8; i++ {
		sig, err := c.Sign([]byte("m"))
		if err != nil {
			t.Fatal(err)
		}
		indices[sig.DeepIndex]++
	}
	if len(indices) != 4 {
		t.Fatalf("saw %d deep sessions, want 4", len(indices))
	}
	for idx, count := range indices {
		if count != 2 {
			t.Errorf("session %d issued %d signatures, want 2", idx, count)
		}
	}
}

func TestUpdateDiscardsSessionAndRefreshesCommitment(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 2)
	oldRoot := c.PublicKey()

	if _, err := c.Sign([]byte("pre-update")); err != nil {
		t.Fatal(err)
	}
	newRoot, err := c.Update()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(newRoot.Root, oldRoot.Root) {
		t.Fatal("update did not change the deep commitment")
	}
	if !bytes.Equal(c.PublicKey().Root, newRoot.Root) {
		t.Fatal("PublicKey does not track the updated commitment")
	}

	// The next signature starts a fresh session certified under the new
	// commitment.
	v := NewVerifier(p, newRoot)
	sig, err := c.Sign([]byte("post-update"))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Activation == nil {
		t.Fatal("post-update signature lacks a fresh activation proof")
	}
	if ok, err := v.Verify([]byte("post-update"), sig); err != nil || !ok {
		t.Fatalf("post-update signature rejected: ok=%v err=%v", ok, err)
	}
	if VerifyActivated(p, []byte("post-update"), sig, oldRoot) {
		t.Fatal("post-update activation verifies under the superseded commitment")
	}
}

func TestSignatureCodecRoundTrip(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 1)
	v := NewVerifier(p, c.PublicKey())

	for i := 0; i < 3; i++ {
		msg := []byte(fmt.Sprintf("wire %d", i))
		sig, err := c.Sign(msg)
		if err != nil {
			t.Fatal(err)
		}
		enc := sig.Encode()
		dec, err := DecodeSignature(p, enc)
		if err != nil {
			t.Fatal(err)
		}
		if (dec.Activation != nil) != (sig.Activation != nil) {
			t.Fatalf("signature %d: activation flag lost in transit", i)
		}
		if ok, err := v.Verify(msg, dec); err != nil || !ok {
			t.Fatalf("decoded signature %d rejected: ok=%v err=%v", i, ok, err)
		}

		if _, err := DecodeSignature(p, enc[:len(enc)-1]); !errors.Is(err, hashfn.ErrInvalidLength) {
			t.Fatalf("truncated decode: got %v", err)
		}
	}
}

func TestStatePersistenceMidSession(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 2)
	v := NewVerifier(p, c.PublicKey())

	// Two signatures into the first session, then snapshot and restore.
	for i := 0; i < 2; i++ {
		sig, err := c.Sign([]byte("before"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := v.Verify([]byte("before"), sig); err != nil {
			t.Fatal(err)
		}
	}
	st, err := DecodeState(p, c.State().Encode())
	if err != nil {
		t.Fatal(err)
	}
	restored, err := RestoreSigner(p, st)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Remaining() != c.Remaining() {
		t.Fatalf("restored Remaining() = %d, want %d", restored.Remaining(), c.Remaining())
	}

	// Continue in the same session: no activation proof, same cached root.
	sig, err := restored.Sign([]byte("after"))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Activation != nil {
		t.Fatal("restored mid-session signer re-issued an activation proof")
	}
	if ok, err := v.Verify([]byte("after"), sig); err != nil || !ok {
		t.Fatalf("post-restore signature rejected: ok=%v err=%v", ok, err)
	}
}

func TestStatePersistencePendingActivation(t *testing.T) {
	p := testParams(t, 16)
	c := testSigner(t, p, 2, 2)
	v := NewVerifier(p, c.PublicKey())

	// Nothing signed yet: restoring a fresh composer and signing must
	// still produce the activation proof exactly once.
	st, err := DecodeState(p, c.State().Encode())
	if err != nil {
		t.Fatal(err)
	}
	restored, err := RestoreSigner(p, st)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := restored.Sign([]byte("first after restore"))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Activation == nil {
		t.Fatal("first signature lacks activation proof after restore")
	}
	if ok, err := v.Verify([]byte("first after restore"), sig); err != nil || !ok {
		t.Fatalf("rejected: ok=%v err=%v", ok, err)
	}
}

func TestRejectsBadHeights(t *testing.T) {
	p := testParams(t, 16)
	seed := bytes.Repeat([]byte{0x01}, 16)
	for _, hs := range [][2]int{{0, 2}, {2, 0}, {-1, 3}} {
		if _, err := NewSigner(p, seed, hs[0], hs[1]); !errors.Is(err, wots.ErrInvalidParameters) {
			t.Errorf("s=%d d=%d: got %v, want ErrInvalidParameters", hs[0], hs[1], err)
		}
	}
	if _, err := NewSigner(p, seed[:5], 2, 2); !errors.Is(err, hashfn.ErrInvalidLength) {
		t.Errorf("short seed: got %v, want ErrInvalidLength", err)
	}
}
