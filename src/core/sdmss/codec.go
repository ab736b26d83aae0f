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

// go/src/core/sdmss/codec.go
//
// Wire format, big-endian throughout:
//
//	flags(u8) || deepIndex(u32) || len(u32) || shallow signature
//	[ shallow public key || len(u32) || deep signature ]   when flagActivation
//
// Inner signatures carry their own length prefix because authentication
// path lengths vary with tree position after updates.
package sdmss

import (
	"encoding/binary"
	"fmt"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

const flagActivation = 0x01

// Encode serializes the signature.
func (s *Signature) Encode() []byte {
	shallow := s.Shallow.Encode()
	var flags byte
	if s.Activation != nil {
		flags |= flagActivation
	}

	out := make([]byte, 0, 9+len(shallow))
	out = append(out, flags)
	out = appendUint32(out, s.DeepIndex)
	out = appendUint32(out, uint32(len(shallow)))
	out = append(out, shallow...)

	if s.Activation != nil {
		out = append(out, s.Activation.ShallowPub.Encode()...)
		deep := s.Activation.Deep.Encode()
		out = appendUint32(out, uint32(len(deep)))
		out = append(out, deep...)
	}
	return out
}

// DecodeSignature parses the encoding produced by Signature.Encode.
func DecodeSignature(p wots.Params, data []byte) (*Signature, error) {
	if len(data) < 9 {
		return nil, fmt.Errorf("%w: signature too short", hashfn.ErrInvalidLength)
	}
	flags := data[0]
	deepIndex := binary.BigEndian.Uint32(data[1:5])
	rest := data[5:]

	shallowRaw, rest, err := takeChunk(rest)
	if err != nil {
		return nil, err
	}
	shallow, err := mss.DecodeSignature(p, shallowRaw)
	if err != nil {
		return nil, err
	}
	sig := &Signature{DeepIndex: deepIndex, Shallow: shallow}

	if flags&flagActivation != 0 {
		pubSize := p.Oracle.Size() + 4
		if len(rest) < pubSize {
			return nil, fmt.Errorf("%w: activation block truncated", hashfn.ErrInvalidLength)
		}
		pub, err := mss.DecodePublicKey(p, rest[:pubSize])
		if err != nil {
			return nil, err
		}
		deepRaw, tail, err := takeChunk(rest[pubSize:])
		if err != nil {
			return nil, err
		}
		deep, err := mss.DecodeSignature(p, deepRaw)
		if err != nil {
			return nil, err
		}
		sig.Activation = &Activation{ShallowPub: pub, Deep: deep}
		rest = tail
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", hashfn.ErrInvalidLength, len(rest))
	}
	return sig, nil
}

func appendUint32(out []byte, v uint32) []byte {
	var be [4]byte
	binary.BigEndian.PutUint32(be[:], v)
	return append(out, be[:]...)
}

// takeChunk consumes a u32-length-prefixed chunk.
func takeChunk(data []byte) (chunk, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: missing length prefix", hashfn.ErrInvalidLength)
	}
	n := binary.BigEndian.Uint32(data[:4])
	if uint32(len(data)-4) < n {
		return nil, nil, fmt.Errorf("%w: chunk of %d bytes in %d remaining",
			hashfn.ErrInvalidLength, n, len(data)-4)
	}
	return data[4 : 4+n], data[4+n:], nil
}
