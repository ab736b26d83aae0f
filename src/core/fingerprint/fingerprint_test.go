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

package fingerprint

import (
	"bytes"
	"testing"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

func TestRoundTrip(t *testing.T) {
	o, err := hashfn.NewSha256(16)
	if err != nil {
		t.Fatal(err)
	}
	p, err := wots.NewParams(o, 16)
	if err != nil {
		t.Fatal(err)
	}
	pub := mss.PublicKey{Root: bytes.Repeat([]byte{0x42}, 16), Size: 128}

	fp := Render(pub)
	got, err := Parse(p, fp)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Root, pub.Root) || got.Size != pub.Size {
		t.Fatalf("round trip changed the commitment: %+v", got)
	}

	if _, err := Parse(p, ""); err == nil {
		t.Error("empty fingerprint accepted")
	}
	if _, err := Parse(p, "0OIl"); err == nil {
		t.Error("non-base58 fingerprint accepted")
	}
}
