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
	"crypto/aes"
	"encoding/binary"
	"fmt"
)

// aesMMOOracle is a Matyas-Meyer-Oseas construction over AES-128, giving a
// 16-byte hash from hardware AES rounds. Security keys with an AES
// coprocessor but no fast SHA engine are the intended users. Only n = 16 is
// supported since the AES block is the digest.
type aesMMOOracle struct{}

// NewAesMMO returns the AES-128 MMO oracle. n must be 16.
func NewAesMMO(n int) (Oracle, error) {
	if n != aes.BlockSize {
		return nil, fmt.Errorf("%w: aes-mmo requires n=16, got %d", ErrInvalidLength, n)
	}
	return &aesMMOOracle{}, nil
}

func (o *aesMMOOracle) Name() string { return "aes-mmo" }
func (o *aesMMOOracle) Size() int    { return aes.BlockSize }

// Sum runs the MMO compression H_{i} = E_{H_{i-1}}(m_i) XOR m_i over the
// concatenated input, zero-padding the last block and appending a final
// length block so inputs of different lengths cannot collide trivially.
func (o *aesMMOOracle) Sum(parts ...[]byte) []byte {
	var data []byte
	for _, p := range parts {
		data = append(data, p...)
	}
	total := len(data)
	if rem := total % aes.BlockSize; rem != 0 {
		data = append(data, make([]byte, aes.BlockSize-rem)...)
	}
	var lengthBlock [aes.BlockSize]byte
	binary.BigEndian.PutUint64(lengthBlock[8:], uint64(total))
	data = append(data, lengthBlock[:]...)

	state := make([]byte, aes.BlockSize)
	out := make([]byte, aes.BlockSize)
	for off := 0; off < len(data); off += aes.BlockSize {
		block, err := aes.NewCipher(state)
		if err != nil {
			panic(err) // state is always 16 bytes
		}
		m := data[off : off+aes.BlockSize]
		block.Encrypt(out, m)
		for i := range state {
			state[i] = out[i] ^ m[i]
		}
	}
	return state
}

func (o *aesMMOOracle) Hash2(a, b []byte) []byte {
	return o.Sum(a, b)
}

// PRF encrypts the counter block under the seed as key. A fresh cipher per
// call keeps the oracle stateless.
func (o *aesMMOOracle) PRF(seed []byte, ctr uint32) []byte {
	return o.prfBlock(seed, ctr, 0)
}

func (o *aesMMOOracle) PRF2(seed []byte, ctr uint32) (key, mask []byte) {
	return o.prfBlock(seed, ctr, 1), o.prfBlock(seed, ctr, 2)
}

func (o *aesMMOOracle) prfBlock(seed []byte, ctr uint32, domain byte) []byte {
	block, err := aes.NewCipher(seed)
	if err != nil {
		// Callers validate seed length via CheckSeed; a wrong length here is
		// a programming error.
		panic(err)
	}
	var in [aes.BlockSize]byte
	binary.BigEndian.PutUint32(in[:4], ctr)
	in[15] = domain
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, in[:])
	return out
}
