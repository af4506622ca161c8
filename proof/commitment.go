package proof

import "encoding/binary"

// Commitment is everything a verifier needs besides the protocol options:
// the layer roots, the opening proof and the commitment geometry.
type Commitment struct {
	Roots      [][]byte
	Proof      *Proof
	DomainSize int
	NumQueries int
	// PolyCount is the number of polynomials committed jointly; one for a
	// plain commitment.
	PolyCount int
}

// ProverCommitment is the public part a prover publishes ahead of openings:
// roots and geometry, without any opened values.
type ProverCommitment struct {
	Roots      [][]byte
	DomainSize int
	PolyCount  int
}

// MarshalBinary serializes the commitment as the ordered concatenation of
// roots, proof and geometry. The proof carries its own layer counts, so no
// length prefix separates it from the trailing integers.
func (c *Commitment) MarshalBinary() []byte {
	out := appendRoots(nil, c.Roots)
	out = append(out, c.Proof.MarshalBinary()...)
	out = binary.BigEndian.AppendUint64(out, uint64(c.DomainSize))
	out = binary.BigEndian.AppendUint64(out, uint64(c.NumQueries))
	out = binary.BigEndian.AppendUint64(out, uint64(c.PolyCount))
	return out
}

// UnmarshalCommitment deserializes a commitment produced with digests of
// digestSize bytes.
func UnmarshalCommitment(buf []byte, digestSize int) (*Commitment, error) {
	r := reader{buf: buf}
	roots, err := readRoots(&r, digestSize)
	if err != nil {
		return nil, err
	}
	p, n, err := UnmarshalProof(r.buf[r.off:])
	if err != nil {
		return nil, err
	}
	r.off += n
	domainSize, err := r.u64()
	if err != nil {
		return nil, err
	}
	numQueries, err := r.u64()
	if err != nil {
		return nil, err
	}
	polyCount, err := r.u64()
	if err != nil {
		return nil, err
	}
	return &Commitment{
		Roots:      roots,
		Proof:      p,
		DomainSize: int(domainSize),
		NumQueries: int(numQueries),
		PolyCount:  int(polyCount),
	}, nil
}

// MarshalBinary serializes the prover commitment.
func (c *ProverCommitment) MarshalBinary() []byte {
	out := appendRoots(nil, c.Roots)
	out = binary.BigEndian.AppendUint64(out, uint64(c.DomainSize))
	out = binary.BigEndian.AppendUint64(out, uint64(c.PolyCount))
	return out
}

// UnmarshalProverCommitment deserializes a prover commitment.
func UnmarshalProverCommitment(buf []byte, digestSize int) (*ProverCommitment, error) {
	r := reader{buf: buf}
	roots, err := readRoots(&r, digestSize)
	if err != nil {
		return nil, err
	}
	domainSize, err := r.u64()
	if err != nil {
		return nil, err
	}
	polyCount, err := r.u64()
	if err != nil {
		return nil, err
	}
	return &ProverCommitment{
		Roots:      roots,
		DomainSize: int(domainSize),
		PolyCount:  int(polyCount),
	}, nil
}

func appendRoots(out []byte, roots [][]byte) []byte {
	out = binary.BigEndian.AppendUint64(out, uint64(len(roots)))
	for _, root := range roots {
		out = append(out, root...)
	}
	return out
}

func readRoots(r *reader, digestSize int) ([][]byte, error) {
	count, err := r.u64()
	if err != nil {
		return nil, err
	}
	roots := make([][]byte, count)
	for i := range roots {
		if roots[i], err = r.bytes(digestSize); err != nil {
			return nil, err
		}
	}
	return roots, nil
}
