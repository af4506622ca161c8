package merkle

// BatchProof authenticates a set of leaf positions against a tree root. It
// carries only the internal nodes the openings cannot derive themselves, in
// the bottom-up, left-to-right order the verifier consumes them.
type BatchProof struct {
	Depth int
	Nodes [][]byte
}

// MarshalBinary serializes the proof as the concatenation of its nodes. The
// depth is not encoded; both sides derive it from the domain size.
func (p *BatchProof) MarshalBinary() []byte {
	if len(p.Nodes) == 0 {
		return nil
	}
	out := make([]byte, 0, len(p.Nodes)*len(p.Nodes[0]))
	for _, n := range p.Nodes {
		out = append(out, n...)
	}
	return out
}

// UnmarshalProof rebuilds a proof from its serialized nodes. digestSize is
// the hash digest length and depth the tree depth the proof was built for.
func UnmarshalProof(buf []byte, digestSize, depth int) (*BatchProof, error) {
	if digestSize <= 0 || len(buf)%digestSize != 0 {
		return nil, ErrInvalidProof
	}
	nodes := make([][]byte, len(buf)/digestSize)
	for i := range nodes {
		nodes[i] = buf[i*digestSize : (i+1)*digestSize]
	}
	return &BatchProof{Depth: depth, Nodes: nodes}, nil
}
