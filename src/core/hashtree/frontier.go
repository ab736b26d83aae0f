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

// go/src/core/hashtree/frontier.go
package hashtree

import (
	"github.com/mkey-core/go/src/crypto/hashfn"
)

// frontierNode is one pending subtree root awaiting its right sibling.
// start is the index of the first leaf the node covers; a node at level L
// covers exactly 1<<L leaves.
type frontierNode struct {
	level int
	start uint32
	hash  []byte
}

// frontier is the per-level pending-node stack that folds a stream of
// leaves into a root. Whenever two nodes of the same level meet they are
// combined into their parent, so at most one node per level is ever held
// and peak memory stays proportional to the tree height. Every node the
// fold produces is reported through onNode with the leaf range it covers,
// which lets the tree capture authentication-path nodes during the single
// construction stream instead of recomputing them later.
type frontier struct {
	o      hashfn.Oracle
	nodes  []frontierNode
	pushed uint32
	onNode func(start, count uint32, hash []byte)
}

func newFrontier(o hashfn.Oracle) *frontier {
	return &frontier{o: o}
}

func (f *frontier) emit(start, count uint32, hash []byte) {
	if f.onNode != nil {
		f.onNode(start, count, hash)
	}
}

// push appends one leaf hash and cascades all possible merges.
func (f *frontier) push(leaf []byte) {
	node := frontierNode{level: 0, start: f.pushed, hash: leaf}
	f.pushed++
	f.emit(node.start, 1, node.hash)
	for len(f.nodes) > 0 && f.nodes[len(f.nodes)-1].level == node.level {
		top := f.nodes[len(f.nodes)-1]
		f.nodes = f.nodes[:len(f.nodes)-1]
		node = frontierNode{
			level: node.level + 1,
			start: top.start,
			hash:  f.o.Hash2(top.hash, node.hash),
		}
		f.emit(node.start, uint32(1)<<uint(node.level), node.hash)
	}
	f.nodes = append(f.nodes, node)
}

// root folds the remaining pending nodes right-to-left. For a power-of-two
// leaf count there is a single node left; otherwise the smaller right-hand
// subtrees hash up under their larger left neighbors, which is the same
// unbalanced split the path computation uses. Each partial fold is emitted
// before it merges leftward, so the promoted right-edge subtree roots are
// observable too.
func (f *frontier) root() []byte {
	if len(f.nodes) == 0 {
		return nil
	}
	acc := f.nodes[len(f.nodes)-1].hash
	accStart := f.nodes[len(f.nodes)-1].start
	for i := len(f.nodes) - 2; i >= 0; i-- {
		f.emit(accStart, f.pushed-accStart, acc)
		acc = f.o.Hash2(f.nodes[i].hash, acc)
		accStart = f.nodes[i].start
	}
	return acc
}
