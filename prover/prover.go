package prover

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
	"github.com/frida-dev/frida-go/merkle"
	"github.com/frida-dev/frida-go/proof"
)

// layer is one committed FRI layer: the tree over its rows and the flat
// evaluations the rows were cut from.
type layer struct {
	tree        *merkle.Tree
	evaluations []fr.Element
}

// Prover holds the committed layers of one blob (or batch) and answers
// opening requests against them.
type Prover struct {
	hasher        hashing.Hasher
	layers        []layer
	polyCount     int
	remainder     []fr.Element
	domainSize    int
	foldingFactor int
}

// DomainSize returns the evaluation domain the commitment was built over.
func (p *Prover) DomainSize() int { return p.domainSize }

// PolyCount returns how many polynomials the commitment covers.
func (p *Prover) PolyCount() int { return p.polyCount }

// IsBatch reports whether the commitment covers more than one polynomial.
func (p *Prover) IsBatch() bool { return p.polyCount > 1 }

// FirstLayerEvaluations exposes the committed first layer in domain-position
// order. For batched commitments the vector is interleaved bucket by bucket;
// use GetEvaluationsFromPositions to read it per position.
func (p *Prover) FirstLayerEvaluations() []fr.Element {
	evals := p.layers[0].evaluations
	if p.IsBatch() {
		return evals
	}
	// the layer stores flattened folding rows: position pos lives in row
	// pos%rowCount at column pos/rowCount
	rowCount := len(evals) / p.foldingFactor
	out := make([]fr.Element, len(evals))
	for pos := range out {
		out[pos] = evals[(pos%rowCount)*p.foldingFactor+pos/rowCount]
	}
	return out
}

// Open builds a proof for the given domain positions.
func (p *Prover) Open(positions []uint64) (*proof.Proof, error) {
	for _, pos := range positions {
		if pos >= uint64(p.domainSize) {
			return nil, frida.ErrPositionOutOfRange
		}
	}

	pr := &proof.Proof{}
	pos := append([]uint64(nil), positions...)
	domainSize := p.domainSize
	start := 0

	if p.IsBatch() {
		pos = frida.FoldPositions(pos, domainSize, p.foldingFactor)
		batchProof, err := p.layers[0].tree.ProveBatch(pos)
		if err != nil {
			return nil, err
		}
		bucketSize := p.polyCount * p.foldingFactor
		rows := make([][]fr.Element, len(pos))
		for i, position := range pos {
			rows[i] = p.layers[0].evaluations[bucketSize*int(position) : bucketSize*(int(position)+1)]
		}
		batchLayer := proof.NewLayer(rows, batchProof)
		pr.BatchLayer = &batchLayer
		domainSize /= p.foldingFactor
		start = 1
	}

	for i := start; i < len(p.layers); i++ {
		pos = frida.FoldPositions(pos, domainSize, p.foldingFactor)
		l, err := p.queryLayer(i, pos)
		if err != nil {
			return nil, err
		}
		pr.Layers = append(pr.Layers, l)
		domainSize /= p.foldingFactor
	}

	pr.SetRemainder(p.remainder)
	return pr, nil
}

// queryLayer opens one committed layer at the given folded positions.
func (p *Prover) queryLayer(index int, positions []uint64) (proof.Layer, error) {
	l := &p.layers[index]
	batchProof, err := l.tree.ProveBatch(positions)
	if err != nil {
		return proof.Layer{}, err
	}
	rows := make([][]fr.Element, len(positions))
	for i, position := range positions {
		rows[i] = l.evaluations[int(position)*p.foldingFactor : (int(position)+1)*p.foldingFactor]
	}
	return proof.NewLayer(rows, batchProof), nil
}
