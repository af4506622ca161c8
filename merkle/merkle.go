// Package merkle implements the commitment trees used by the protocol. A
// tree is built over pre-hashed leaves and supports batch openings: a single
// proof authenticates any set of leaf positions, sharing the internal nodes
// their paths have in common.
package merkle

import (
	"bytes"
	"errors"
	"math/bits"
	"sort"

	"github.com/frida-dev/frida-go/hashing"
)

var (
	// ErrLeafCount is returned when a tree is built over a leaf count
	// that is not a power of two greater than one.
	ErrLeafCount = errors.New("merkle: leaf count must be a power of two greater than one")

	// ErrIndexOutOfRange is returned when a proof is requested for a
	// position outside the tree.
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")

	// ErrNoIndexes is returned when a batch proof is requested for an
	// empty position set.
	ErrNoIndexes = errors.New("merkle: batch proof needs at least one index")

	// ErrInvalidProof is returned when a proof does not carry the nodes
	// its index set requires.
	ErrInvalidProof = errors.New("merkle: malformed batch proof")
)

// Tree is a fully materialized binary Merkle tree. Leaves are digests; the
// caller hashes its rows before building the tree.
type Tree struct {
	hasher hashing.Hasher
	// nodes uses the implicit heap layout: nodes[1] is the root and the
	// n leaves live at nodes[n..2n-1]. nodes[0] is unused.
	nodes [][]byte
	depth int
}

// Build constructs a tree over the given leaf digests.
func Build(hasher hashing.Hasher, leaves [][]byte) (*Tree, error) {
	n := len(leaves)
	if n < 2 || bits.OnesCount(uint(n)) != 1 {
		return nil, ErrLeafCount
	}
	nodes := make([][]byte, 2*n)
	copy(nodes[n:], leaves)
	for i := n - 1; i > 0; i-- {
		nodes[i] = hasher.Hash(nodes[2*i], nodes[2*i+1])
	}
	return &Tree{hasher: hasher, nodes: nodes, depth: bits.TrailingZeros(uint(n))}, nil
}

// Root returns the tree root.
func (t *Tree) Root() []byte {
	return t.nodes[1]
}

// Depth returns the number of levels between a leaf and the root.
func (t *Tree) Depth() int {
	return t.depth
}

// Leaf returns the digest stored at the given position.
func (t *Tree) Leaf(index int) []byte {
	return t.nodes[len(t.nodes)/2+index]
}

// ProveBatch builds a proof for the given leaf positions. Duplicate
// positions are allowed; the proof covers the deduplicated, sorted set.
func (t *Tree) ProveBatch(indexes []uint64) (*BatchProof, error) {
	n := len(t.nodes) / 2
	idx, err := normalizeIndexes(indexes, uint64(n))
	if err != nil {
		return nil, err
	}

	var siblings [][]byte
	// Walk the tree bottom-up. At each level the known frontier is the
	// sorted set of node positions derivable from the openings so far;
	// every sibling outside the frontier goes into the proof.
	frontier := make([]int, len(idx))
	for i, v := range idx {
		frontier[i] = n + int(v)
	}
	for level := 0; level < t.depth; level++ {
		next := frontier[:0]
		for i := 0; i < len(frontier); i++ {
			node := frontier[i]
			sib := node ^ 1
			if i+1 < len(frontier) && frontier[i+1] == sib {
				i++ // sibling is opened too, nothing to include
			} else {
				siblings = append(siblings, t.nodes[sib])
			}
			next = append(next, node/2)
		}
		frontier = next
	}
	return &BatchProof{Depth: t.depth, Nodes: siblings}, nil
}

// VerifyBatch checks that the given leaf digests sit at the given positions
// of the tree committed to by root. Indexes are deduplicated the same way
// ProveBatch deduplicates them; leaves must match the deduplicated order.
func VerifyBatch(hasher hashing.Hasher, root []byte, indexes []uint64, leaves [][]byte, proof *BatchProof) error {
	n := uint64(1) << proof.Depth
	idx, err := normalizeIndexes(indexes, n)
	if err != nil {
		return err
	}
	if len(leaves) != len(idx) {
		return ErrInvalidProof
	}

	type entry struct {
		pos    int
		digest []byte
	}
	frontier := make([]entry, len(idx))
	for i, v := range idx {
		frontier[i] = entry{pos: int(n) + int(v), digest: leaves[i]}
	}
	nodes := proof.Nodes
	for level := 0; level < proof.Depth; level++ {
		next := frontier[:0]
		for i := 0; i < len(frontier); i++ {
			cur := frontier[i]
			var left, right []byte
			if i+1 < len(frontier) && frontier[i+1].pos == cur.pos^1 {
				left, right = cur.digest, frontier[i+1].digest
				i++
			} else {
				if len(nodes) == 0 {
					return ErrInvalidProof
				}
				sib := nodes[0]
				nodes = nodes[1:]
				if cur.pos&1 == 0 {
					left, right = cur.digest, sib
				} else {
					left, right = sib, cur.digest
				}
			}
			next = append(next, entry{pos: cur.pos / 2, digest: hasher.Hash(left, right)})
		}
		frontier = next
	}
	if len(nodes) != 0 {
		return ErrInvalidProof
	}
	if !bytes.Equal(frontier[0].digest, root) {
		return ErrInvalidProof
	}
	return nil
}

// normalizeIndexes sorts, deduplicates and range-checks a position set.
func normalizeIndexes(indexes []uint64, n uint64) ([]uint64, error) {
	if len(indexes) == 0 {
		return nil, ErrNoIndexes
	}
	idx := make([]uint64, len(indexes))
	copy(idx, indexes)
	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	out := idx[:1]
	for _, v := range idx[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	if out[len(out)-1] >= n {
		return nil, ErrIndexOutOfRange
	}
	return out, nil
}
