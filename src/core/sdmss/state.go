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

// go/src/core/sdmss/state.go
package sdmss

import (
	"encoding/binary"
	"fmt"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

// State is everything a composer needs to resume after a restart without
// ever re-deriving a consumed leaf: the deep layer's counters, the active
// shallow session if any, and the not-yet-attached activation proof. The
// proof is persisted verbatim because its deep leaf is already spent and
// cannot be signed again. Durability discipline is the caller's: write the
// advanced state before releasing the signature it produced.
type State struct {
	S    int
	Deep mss.State

	HasSession bool
	DeepIndex  uint32
	Shallow    mss.State
	Pending    *Activation // nil once attached
}

// State snapshots the composer.
func (c *Signer) State() State {
	st := State{S: c.s, Deep: c.deep.State()}
	if c.shallow != nil {
		st.HasSession = true
		st.DeepIndex = c.deepIndex
		st.Shallow = c.shallow.State()
		st.Pending = c.pending
	}
	return st
}

const (
	stateFlagSession = 0x01
	stateFlagPending = 0x02
)

// Encode serializes state as:
//
//	flags(u8) || s(u8) || len(u32) || deep state
//	[ deepIndex(u32) || len(u32) || shallow state ]      when flagSession
//	[ shallow public key || len(u32) || deep signature ] when flagPending
func (st State) Encode() []byte {
	var flags byte
	if st.HasSession {
		flags |= stateFlagSession
	}
	if st.Pending != nil {
		flags |= stateFlagPending
	}
	deep := st.Deep.Encode()

	out := []byte{flags, byte(st.S)}
	out = appendUint32(out, uint32(len(deep)))
	out = append(out, deep...)
	if st.HasSession {
		out = appendUint32(out, st.DeepIndex)
		shallow := st.Shallow.Encode()
		out = appendUint32(out, uint32(len(shallow)))
		out = append(out, shallow...)
	}
	if st.Pending != nil {
		out = append(out, st.Pending.ShallowPub.Encode()...)
		sig := st.Pending.Deep.Encode()
		out = appendUint32(out, uint32(len(sig)))
		out = append(out, sig...)
	}
	return out
}

// DecodeState parses the encoding produced by State.Encode.
func DecodeState(p wots.Params, data []byte) (State, error) {
	if len(data) < 6 {
		return State{}, fmt.Errorf("%w: state too short", hashfn.ErrInvalidLength)
	}
	flags := data[0]
	st := State{S: int(data[1])}
	deepRaw, rest, err := takeChunk(data[2:])
	if err != nil {
		return State{}, err
	}
	if st.Deep, err = mss.DecodeState(p, deepRaw); err != nil {
		return State{}, err
	}

	if flags&stateFlagSession != 0 {
		if len(rest) < 4 {
			return State{}, fmt.Errorf("%w: session block truncated", hashfn.ErrInvalidLength)
		}
		st.HasSession = true
		st.DeepIndex = binary.BigEndian.Uint32(rest[:4])
		var shallowRaw []byte
		if shallowRaw, rest, err = takeChunk(rest[4:]); err != nil {
			return State{}, err
		}
		if st.Shallow, err = mss.DecodeState(p, shallowRaw); err != nil {
			return State{}, err
		}
	}
	if flags&stateFlagPending != 0 {
		pubSize := p.Oracle.Size() + 4
		if len(rest) < pubSize {
			return State{}, fmt.Errorf("%w: pending block truncated", hashfn.ErrInvalidLength)
		}
		pub, err := mss.DecodePublicKey(p, rest[:pubSize])
		if err != nil {
			return State{}, err
		}
		sigRaw, tail, err := takeChunk(rest[pubSize:])
		if err != nil {
			return State{}, err
		}
		deepSig, err := mss.DecodeSignature(p, sigRaw)
		if err != nil {
			return State{}, err
		}
		st.Pending = &Activation{ShallowPub: pub, Deep: deepSig}
		rest = tail
	}
	if len(rest) != 0 {
		return State{}, fmt.Errorf("%w: %d trailing bytes", hashfn.ErrInvalidLength, len(rest))
	}
	return st, nil
}

// RestoreSigner rebuilds a composer from persisted state. Both tree layers
// are reconstructed and fast-forwarded to their recorded positions.
func RestoreSigner(p wots.Params, st State) (*Signer, error) {
	if st.S < 1 {
		return nil, fmt.Errorf("%w: shallow height %d", wots.ErrInvalidParameters, st.S)
	}
	deep, err := mss.RestoreSigner(p, st.Deep)
	if err != nil {
		return nil, err
	}
	c := &Signer{
		params:   p,
		deepSeed: append([]byte(nil), st.Deep.Seed...),
		s:        st.S,
		deep:     deep,
		deepRoot: deep.PublicKey(),
	}
	if st.HasSession {
		shallow, err := mss.RestoreSigner(p, st.Shallow)
		if err != nil {
			return nil, err
		}
		c.shallow = shallow
		c.shallowPub = shallow.PublicKey()
		c.deepIndex = st.DeepIndex
		c.pending = st.Pending
	}
	return c, nil
}
