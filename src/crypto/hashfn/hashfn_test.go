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

package hashfn

import (
	"bytes"
	"errors"
	"testing"
)

func oracles(t *testing.T) []Oracle {
	t.Helper()
	sha, err := NewSha256(16)
	if err != nil {
		t.Fatal(err)
	}
	shake, err := NewShake256(16)
	if err != nil {
		t.Fatal(err)
	}
	mmo, err := NewAesMMO(16)
	if err != nil {
		t.Fatal(err)
	}
	return []Oracle{sha, shake, mmo}
}

func TestSumDeterministicAndSized(t *testing.T) {
	for _, o := range oracles(t) {
		a := o.Sum([]byte("hello"), []byte("world"))
		b := o.Sum([]byte("helloworld"))
		if len(a) != o.Size() {
			t.Errorf("%s: Sum returned %d bytes, want %d", o.Name(), len(a), o.Size())
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s: Sum over split input differs from concatenated input", o.Name())
		}
		if bytes.Equal(a, o.Sum([]byte("helloworlD"))) {
			t.Errorf("%s: distinct inputs collided", o.Name())
		}
	}
}

func TestPRFCounterSeparation(t *testing.T) {
	seed := bytes.Repeat([]byte{0x5a}, 16)
	for _, o := range oracles(t) {
		v0 := o.PRF(seed, 0)
		v1 := o.PRF(seed, 1)
		if bytes.Equal(v0, v1) {
			t.Errorf("%s: PRF outputs for distinct counters collided", o.Name())
		}
		if !bytes.Equal(v0, o.PRF(seed, 0)) {
			t.Errorf("%s: PRF is not deterministic", o.Name())
		}
	}
}

func TestPRF2Independence(t *testing.T) {
	seed := bytes.Repeat([]byte{0x13}, 16)
	for _, o := range oracles(t) {
		key, mask := o.PRF2(seed, 7)
		if len(key) != o.Size() || len(mask) != o.Size() {
			t.Fatalf("%s: PRF2 output sizes %d/%d", o.Name(), len(key), len(mask))
		}
		if bytes.Equal(key, mask) {
			t.Errorf("%s: PRF2 key and mask are equal", o.Name())
		}
	}
}

func TestHash2OrderSensitive(t *testing.T) {
	a := bytes.Repeat([]byte{1}, 16)
	b := bytes.Repeat([]byte{2}, 16)
	for _, o := range oracles(t) {
		if bytes.Equal(o.Hash2(a, b), o.Hash2(b, a)) {
			t.Errorf("%s: Hash2 ignores child order", o.Name())
		}
	}
}

func TestNewRejectsBadSizes(t *testing.T) {
	cases := []struct {
		name string
		n    int
	}{
		{"sha256", 64},
		{"shake256", 4},
		{"aes-mmo", 32},
	}
	for _, tc := range cases {
		if _, err := New(tc.name, tc.n); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("New(%s, %d): got %v, want ErrInvalidLength", tc.name, tc.n, err)
		}
	}
	if _, err := New("md5", 16); !errors.Is(err, ErrUnknownOracle) {
		t.Errorf("unknown oracle: got %v", err)
	}
}

func TestCheckSeed(t *testing.T) {
	o, _ := NewSha256(16)
	if err := CheckSeed(o, make([]byte, 16)); err != nil {
		t.Fatalf("valid seed rejected: %v", err)
	}
	if err := CheckSeed(o, make([]byte, 15)); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("short seed: got %v", err)
	}
}
