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

// go/src/core/mss/codec.go
//
// Fixed-width big-endian encodings of public keys, signatures and signer
// state, so size comparisons against other schemes are byte-accurate and
// tree state survives power cycles.
package mss

import (
	"encoding/binary"
	"fmt"

	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

// Encode serializes the commitment as root || size(u32).
func (pk PublicKey) Encode() []byte {
	out := make([]byte, len(pk.Root)+4)
	copy(out, pk.Root)
	binary.BigEndian.PutUint32(out[len(pk.Root):], pk.Size)
	return out
}

// DecodePublicKey parses a commitment of oracle size n.
func DecodePublicKey(p wots.Params, data []byte) (PublicKey, error) {
	n := p.Oracle.Size()
	if len(data) != n+4 {
		return PublicKey{}, fmt.Errorf("%w: public key is %d bytes, want %d",
			hashfn.ErrInvalidLength, len(data), n+4)
	}
	return PublicKey{
		Root: append([]byte(nil), data[:n]...),
		Size: binary.BigEndian.Uint32(data[n:]),
	}, nil
}

// Encode serializes a signature as index(u32) || pathCount(u8) ||
// one-time signature || path hashes. The path count is explicit because
// unbalanced tree generations have position-dependent path lengths.
func (s *Signature) Encode() []byte {
	wotsBytes := s.Wots.Encode()
	out := make([]byte, 0, 5+len(wotsBytes)+len(s.Path)*len(s.Wots.PKHash))
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], s.Index)
	out = append(out, idx[:]...)
	out = append(out, byte(len(s.Path)))
	out = append(out, wotsBytes...)
	for _, h := range s.Path {
		out = append(out, h...)
	}
	return out
}

// DecodeSignature parses the encoding produced by Signature.Encode.
func DecodeSignature(p wots.Params, data []byte) (*Signature, error) {
	n := p.Oracle.Size()
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: signature too short", hashfn.ErrInvalidLength)
	}
	index := binary.BigEndian.Uint32(data[:4])
	pathCount := int(data[4])
	rest := data[5:]

	wotsSize := p.SignatureSize()
	if len(rest) != wotsSize+pathCount*n {
		return nil, fmt.Errorf("%w: signature is %d bytes, want %d",
			hashfn.ErrInvalidLength, len(data), 5+wotsSize+pathCount*n)
	}
	wsig, err := wots.DecodeSignature(p, rest[:wotsSize])
	if err != nil {
		return nil, err
	}
	path := make([][]byte, pathCount)
	for i := range path {
		off := wotsSize + i*n
		path[i] = append([]byte(nil), rest[off:off+n]...)
	}
	return &Signature{Index: index, Wots: wsig, Path: path}, nil
}

// State is the persistable part of a Signer: seed plus the three counters.
// If the state is written durably before a signature is released, a crash
// and restart can never re-issue a consumed leaf.
type State struct {
	Seed   []byte
	Offset uint32
	Index  uint32
	Size   uint32
}

// State snapshots the signer for persistence.
func (s *Signer) State() State {
	return State{
		Seed:   append([]byte(nil), s.seed...),
		Offset: s.offset,
		Index:  s.index,
		Size:   s.size,
	}
}

// Encode serializes state as seed || offset(u32) || index(u32) || size(u32).
func (st State) Encode() []byte {
	out := make([]byte, len(st.Seed)+12)
	copy(out, st.Seed)
	off := len(st.Seed)
	binary.BigEndian.PutUint32(out[off:], st.Offset)
	binary.BigEndian.PutUint32(out[off+4:], st.Index)
	binary.BigEndian.PutUint32(out[off+8:], st.Size)
	return out
}

// DecodeState parses a state blob for oracle size n.
func DecodeState(p wots.Params, data []byte) (State, error) {
	n := p.Oracle.Size()
	if len(data) != n+12 {
		return State{}, fmt.Errorf("%w: state is %d bytes, want %d",
			hashfn.ErrInvalidLength, len(data), n+12)
	}
	return State{
		Seed:   append([]byte(nil), data[:n]...),
		Offset: binary.BigEndian.Uint32(data[n:]),
		Index:  binary.BigEndian.Uint32(data[n+4:]),
		Size:   binary.BigEndian.Uint32(data[n+8:]),
	}, nil
}

// RestoreSigner rebuilds a signer from persisted state, fast-forwarding the
// tree to the recorded position.
func RestoreSigner(p wots.Params, st State) (*Signer, error) {
	if err := hashfn.CheckSeed(p.Oracle, st.Seed); err != nil {
		return nil, err
	}
	if st.Size == 0 || st.Index > st.Size {
		return nil, fmt.Errorf("%w: inconsistent counters", wots.ErrInvalidParameters)
	}
	s := &Signer{
		params: p,
		seed:   append([]byte(nil), st.Seed...),
		offset: st.Offset,
		index:  st.Index,
		size:   st.Size,
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	if err := s.tree.Skip(st.Index); err != nil {
		return nil, err
	}
	return s, nil
}
