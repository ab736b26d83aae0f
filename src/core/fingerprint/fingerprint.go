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

// Package fingerprint renders tree commitments as short Base58 strings for
// display on the device and in logs, and parses them back. The rendering is
// the full commitment (root plus covered leaf count), not a re-hash, so a
// parsed fingerprint is usable for verification directly.
package fingerprint

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/crypto/wots"
)

// Prefix byte for commitment fingerprints
const prefixByte = 0x6d // ASCII 'm'

// Render encodes a commitment as a prefixed Base58 string.
func Render(pub mss.PublicKey) string {
	payload := append([]byte{prefixByte}, pub.Encode()...)
	return base58.Encode(payload)
}

// Parse decodes a fingerprint back into the commitment it renders.
func Parse(p wots.Params, fp string) (mss.PublicKey, error) {
	raw := base58.Decode(fp)
	if len(raw) == 0 {
		return mss.PublicKey{}, fmt.Errorf("fingerprint: invalid encoding %q", fp)
	}
	if raw[0] != prefixByte {
		return mss.PublicKey{}, fmt.Errorf("fingerprint: bad prefix 0x%02x", raw[0])
	}
	return mss.DecodePublicKey(p, raw[1:])
}
