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

// Package hashtree maintains a Merkle tree over one-time public keys under
// strictly sequential leaf consumption. Trees may cover any leaf count, not
// only powers of two: an m-leaf tree splits at the largest power of two
// below m, so a commitment can be recomputed over exactly the remaining
// leaves after a prefix has been consumed.
package hashtree

import (
	"crypto/subtle"
	"errors"

	"github.com/mkey-core/go/src/crypto/hashfn"
)

// ErrExhausted is returned by NextLeaf once all leaves have been produced.
var ErrExhausted = errors.New("hashtree: all leaves consumed")

// LeafFunc computes the n-byte leaf hash for a tree-local index.
type LeafFunc func(index uint32) ([]byte, error)

// sibSlot is one retained authentication-path node, identified by the leaf
// range its subtree covers. One slot per path depth is held; a slot is
// replaced only when the walked leaf moves into a different child at that
// depth, so sequential consumption recomputes each subtree root at most
// once over its lifetime.
type sibSlot struct {
	start uint32
	count uint32
	hash  []byte
}

// Tree produces, for each sequential leaf index, the leaf hash and the
// sibling path up to the root. Construction streams all leaves through the
// frontier once and captures the first leaf's path nodes as they fall out
// of the fold; thereafter each path reuses the per-depth retained siblings,
// so sequential production costs amortized O(height) node hashes per leaf.
type Tree struct {
	o    hashfn.Oracle
	leaf LeafFunc
	size uint32
	next uint32
	root []byte
	row  [][]byte  // nil when row caching is disabled
	sibs []sibSlot // per-depth retained path nodes
}

// New builds a tree of size leaves. cacheRow trades size*n bytes of memory
// for cheap sibling refreshes; disabling it keeps memory at O(height) but
// re-derives leaves whenever a retained sibling must be replaced.
func New(o hashfn.Oracle, leaf LeafFunc, size uint32, cacheRow bool) (*Tree, error) {
	if size == 0 {
		return nil, errors.New("hashtree: tree must have at least one leaf")
	}
	t := &Tree{o: o, leaf: leaf, size: size}
	if cacheRow {
		t.row = make([][]byte, 0, size)
	}

	// Leaf 0's sibling ranges, keyed by (start, count), indexed by depth.
	// The construction fold produces every one of these nodes, so the
	// first path is retained without any extra hashing.
	wanted := make(map[uint64]int)
	{
		count, depth := size, 0
		for count > 1 {
			k := splitPoint(count)
			wanted[uint64(k)<<32|uint64(count-k)] = depth
			count = k
			depth++
		}
		t.sibs = make([]sibSlot, depth)
	}

	f := newFrontier(o)
	f.onNode = func(start, count uint32, hash []byte) {
		if d, ok := wanted[uint64(start)<<32|uint64(count)]; ok {
			t.sibs[d] = sibSlot{start: start, count: count, hash: hash}
		}
	}
	for i := uint32(0); i < size; i++ {
		h, err := leaf(i)
		if err != nil {
			return nil, err
		}
		if cacheRow {
			t.row = append(t.row, h)
		}
		f.push(h)
	}
	t.root = f.root()
	return t, nil
}

// Root returns the commitment over all leaves of this tree.
func (t *Tree) Root() []byte { return t.root }

// Size returns the leaf count m.
func (t *Tree) Size() uint32 { return t.size }

// Remaining returns how many leaves have not yet been produced.
func (t *Tree) Remaining() uint32 { return t.size - t.next }

// NextLeaf produces the current leaf's hash and authentication path and
// advances by exactly one index. Fails with ErrExhausted after the m-th
// leaf, leaving the position unchanged.
func (t *Tree) NextLeaf() (leaf []byte, path [][]byte, err error) {
	if t.next >= t.size {
		return nil, nil, ErrExhausted
	}
	leaf, err = t.leafHash(t.next)
	if err != nil {
		return nil, nil, err
	}
	path, err = t.AuthPath(t.next)
	if err != nil {
		return nil, nil, err
	}
	t.next++
	return leaf, path, nil
}

// Skip advances the position by k leaves without producing them. Used when
// restoring a persisted tree whose prefix was consumed in an earlier run.
func (t *Tree) Skip(k uint32) error {
	if k > t.Remaining() {
		return ErrExhausted
	}
	t.next += k
	return nil
}

// AuthPath returns the sibling hashes from leaf index up to the root,
// ordered leaf-to-root. Path length varies with position for unbalanced
// sizes and equals the height for power-of-two trees. Siblings come from
// the per-depth retained slots; a slot whose subtree no longer borders the
// walked leaf is refreshed in place, which for sequential indices happens
// once per 2^h leaves at height h.
func (t *Tree) AuthPath(index uint32) ([][]byte, error) {
	if index >= t.size {
		return nil, ErrExhausted
	}
	var down [][]byte // root-to-leaf, reversed below
	i, start, count := index, uint32(0), t.size
	for depth := 0; count > 1; depth++ {
		k := splitPoint(count)
		var ss, sc uint32
		if i < k {
			ss, sc = start+k, count-k
			count = k
		} else {
			ss, sc = start, k
			i -= k
			start += k
			count -= k
		}
		sib, err := t.sibling(depth, ss, sc)
		if err != nil {
			return nil, err
		}
		down = append(down, sib)
	}
	path := make([][]byte, len(down))
	for j := range down {
		path[j] = down[len(down)-1-j]
	}
	return path, nil
}

// sibling returns the retained path node at depth when it still covers
// [start, start+count), recomputing and replacing the slot otherwise. The
// returned slice is a copy; callers own it.
func (t *Tree) sibling(depth int, start, count uint32) ([]byte, error) {
	for len(t.sibs) <= depth {
		t.sibs = append(t.sibs, sibSlot{})
	}
	s := &t.sibs[depth]
	if s.hash == nil || s.start != start || s.count != count {
		h, err := t.subtreeRoot(start, count)
		if err != nil {
			return nil, err
		}
		*s = sibSlot{start: start, count: count, hash: h}
	}
	return append([]byte(nil), s.hash...), nil
}

// subtreeRoot computes the root over leaves [start, start+count).
func (t *Tree) subtreeRoot(start, count uint32) ([]byte, error) {
	if count == 1 {
		return t.leafHash(start)
	}
	k := splitPoint(count)
	left, err := t.subtreeRoot(start, k)
	if err != nil {
		return nil, err
	}
	right, err := t.subtreeRoot(start+k, count-k)
	if err != nil {
		return nil, err
	}
	return t.o.Hash2(left, right), nil
}

func (t *Tree) leafHash(i uint32) ([]byte, error) {
	if t.row != nil {
		return t.row[i], nil
	}
	return t.leaf(i)
}

// splitPoint returns the largest power of two strictly below count.
func splitPoint(count uint32) uint32 {
	k := uint32(1)
	for k*2 < count {
		k *= 2
	}
	return k
}

// VerifyPath recomputes the root from a leaf hash, its index, the tree size
// and the sibling path, and compares against root in constant time. The
// index and size drive the left/right decision at every level, including
// the promoted nodes of unbalanced trees.
func VerifyPath(o hashfn.Oracle, leaf []byte, index, size uint32, path [][]byte, root []byte) bool {
	if size == 0 || index >= size || len(leaf) != o.Size() || len(root) != o.Size() {
		return false
	}
	fn, sn := index, size-1
	r := leaf
	for _, p := range path {
		if sn == 0 || len(p) != o.Size() {
			return false
		}
		if fn&1 == 1 || fn == sn {
			r = o.Hash2(p, r)
			if fn&1 == 0 {
				for fn&1 == 0 && fn != 0 {
					fn >>= 1
					sn >>= 1
				}
			}
		} else {
			r = o.Hash2(r, p)
		}
		fn >>= 1
		sn >>= 1
	}
	return sn == 0 && subtle.ConstantTimeCompare(r, root) == 1
}
