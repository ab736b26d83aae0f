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

package mss

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

func testParams(t *testing.T) wots.Params {
	t.Helper()
	o, err := hashfn.NewSha256(16)
	if err != nil {
		t.Fatal(err)
	}
	p, err := wots.NewParams(o, 16)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func testSigner(t *testing.T, height int) *Signer {
	t.Helper()
	p := testParams(t)
	seed := bytes.Repeat([]byte{0x5c}, 16)
	s, err := NewSigner(p, seed, height)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSignAndVerify(t *testing.T) {
	p := testParams(t)
	s := testSigner(t, 3)
	pk := s.PublicKey()

	for _, msg := range []string{"hello", "world", ""} {
		sig, err := s.Sign([]byte(msg))
		if err != nil {
			t.Fatal(err)
		}
		if !Verify(p, []byte(msg), sig, pk) {
			t.Errorf("valid signature for %q rejected", msg)
		}
		if Verify(p, []byte(msg+"?"), sig, pk) {
			t.Errorf("signature for %q accepted for altered message", msg)
		}
	}
}

func TestExactCapacity(t *testing.T) {
	p := testParams(t)
	s := testSigner(t, 3)
	pk := s.PublicKey()

	for i := 0; i < 8; i++ {
		msg := []byte(fmt.Sprintf("message %d", i))
		sig, err := s.Sign(msg)
		if err != nil {
			t.Fatalf("signature %d: %v", i, err)
		}
		if !Verify(p, msg, sig, pk) {
			t.Fatalf("signature %d does not verify", i)
		}
	}
	if _, err := s.Sign([]byte("one too many")); !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("9th signature: got %v, want ErrCapacityExhausted", err)
	}
	if s.Remaining() != 0 {
		t.Fatalf("Remaining() = %d after exhaustion", s.Remaining())
	}
}

func TestNoLeafReuse(t *testing.T) {
	s := testSigner(t, 3)

	seenIdx := make(map[uint32]bool)
	seenPKH := make(map[string]bool)
	for i := 0; i < 8; i++ {
		sig, err := s.Sign([]byte("same message every time"))
		if err != nil {
			t.Fatal(err)
		}
		if seenIdx[sig.Index] {
			t.Fatalf("leaf index %d issued twice", sig.Index)
		}
		if seenPKH[string(sig.Wots.PKHash)] {
			t.Fatalf("one-time public key reused at index %d", sig.Index)
		}
		seenIdx[sig.Index] = true
		seenPKH[string(sig.Wots.PKHash)] = true
	}
}

func TestUpdateShrinksCommitment(t *testing.T) {
	p := testParams(t)
	s := testSigner(t, 3)
	oldPK := s.PublicKey()

	var consumed []*Signature
	for i := 0; i < 3; i++ {
		sig, err := s.Sign([]byte("old generation"))
		if err != nil {
			t.Fatal(err)
		}
		consumed = append(consumed, sig)
	}

	newPK, err := s.Update()
	if err != nil {
		t.Fatal(err)
	}
	if newPK.Size != 5 {
		t.Fatalf("new commitment covers %d leaves, want 5", newPK.Size)
	}
	if bytes.Equal(newPK.Root, oldPK.Root) {
		t.Fatal("update did not change the root")
	}

	// Old signatures must reject under the new commitment.
	for _, sig := range consumed {
		if Verify(p, []byte("old generation"), sig, newPK) {
			t.Fatalf("consumed leaf %d still verifies under the shrunk root", sig.Index)
		}
	}

	// All remaining leaves sign and verify under the new commitment with
	// renumbered indices.
	for i := 0; i < 5; i++ {
		msg := []byte(fmt.Sprintf("new generation %d", i))
		sig, err := s.Sign(msg)
		if err != nil {
			t.Fatal(err)
		}
		if sig.Index != uint32(i) {
			t.Fatalf("renumbered index = %d, want %d", sig.Index, i)
		}
		if !Verify(p, msg, sig, newPK) {
			t.Fatalf("post-update signature %d rejected", i)
		}
		if Verify(p, msg, sig, oldPK) {
			t.Fatalf("post-update signature %d verifies under the old root", i)
		}
	}
	if _, err := s.Sign([]byte("past the end")); !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("got %v, want ErrCapacityExhausted", err)
	}
}

func TestUpdateIsNoOpWhenNothingConsumed(t *testing.T) {
	s := testSigner(t, 2)
	before := s.PublicKey()
	after, err := s.Update()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before.Root, after.Root) || before.Size != after.Size {
		t.Fatal("update with nothing consumed changed the commitment")
	}
}

func TestUpdateAfterExhaustionIsNoOp(t *testing.T) {
	s := testSigner(t, 1)
	for i := 0; i < 2; i++ {
		if _, err := s.Sign([]byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	pk := s.PublicKey()
	after, err := s.Update()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pk.Root, after.Root) || pk.Size != after.Size {
		t.Fatal("update on exhausted signer changed the commitment")
	}
}

func TestRepeatedUpdates(t *testing.T) {
	p := testParams(t)
	s := testSigner(t, 3)

	// Consume one leaf, update, repeat. Every intermediate generation must
	// keep signing and verifying correctly, including the odd-sized ones.
	for remaining := 8; remaining > 1; remaining-- {
		pk := s.PublicKey()
		if pk.Size != uint32(remaining) {
			t.Fatalf("generation size %d, want %d", pk.Size, remaining)
		}
		msg := []byte(fmt.Sprintf("gen of %d", remaining))
		sig, err := s.Sign(msg)
		if err != nil {
			t.Fatal(err)
		}
		if !Verify(p, msg, sig, pk) {
			t.Fatalf("signature in %d-leaf generation rejected", remaining)
		}
		if _, err := s.Update(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSignatureCodecRoundTrip(t *testing.T) {
	p := testParams(t)
	s := testSigner(t, 2)
	pk := s.PublicKey()

	sig, err := s.Sign([]byte("serialize me"))
	if err != nil {
		t.Fatal(err)
	}
	dec, err := DecodeSignature(p, sig.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(p, []byte("serialize me"), dec, pk) {
		t.Fatal("decoded signature rejected")
	}

	pkDec, err := DecodePublicKey(p, pk.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(p, []byte("serialize me"), dec, pkDec) {
		t.Fatal("decoded public key rejected")
	}

	if _, err := DecodeSignature(p, sig.Encode()[:10]); !errors.Is(err, hashfn.ErrInvalidLength) {
		t.Fatalf("short signature decode: got %v", err)
	}
}

func TestStatePersistenceRoundTrip(t *testing.T) {
	p := testParams(t)
	s := testSigner(t, 3)
	pk := s.PublicKey()

	for i := 0; i < 3; i++ {
		if _, err := s.Sign([]byte("pre-crash")); err != nil {
			t.Fatal(err)
		}
	}

	st, err := DecodeState(p, s.State().Encode())
	if err != nil {
		t.Fatal(err)
	}
	restored, err := RestoreSigner(p, st)
	if err != nil {
		t.Fatal(err)
	}

	// The restored signer continues at leaf 3; no leaf is reused.
	sig, err := restored.Sign([]byte("post-crash"))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Index != 3 {
		t.Fatalf("restored signer issued index %d, want 3", sig.Index)
	}
	if !Verify(p, []byte("post-crash"), sig, pk) {
		t.Fatal("post-restore signature rejected")
	}
}
