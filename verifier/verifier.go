// Package verifier checks FRI commitments and openings. A Verifier is built
// once per commitment by replaying the prover's transcript over the
// published roots; it can then check any number of opening proofs against
// the drawn challenges.
package verifier

import (
	"bytes"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"github.com/frida-dev/frida-go/field"
	"github.com/frida-dev/frida-go/frida"
	"github.com/frida-dev/frida-go/hashing"
	"github.com/frida-dev/frida-go/logger"
	"github.com/frida-dev/frida-go/merkle"
	"github.com/frida-dev/frida-go/polynom"
	"github.com/frida-dev/frida-go/proof"
	"github.com/frida-dev/frida-go/transcript"
)

// Verifier holds the replayed transcript challenges for one commitment.
type Verifier struct {
	opts       frida.Options
	hasher     hashing.Hasher
	domainSize int
	polyCount  int
	numLayers  int
	roots      [][]byte
	alphas     []fr.Element
	// xi holds the batch combination challenges; nil for single-blob
	// commitments.
	xi  []fr.Element
	log zerolog.Logger
}

// FromProverCommitment replays the transcript over a roots-only commitment.
// It returns the verifier together with the base query positions the
// transcript binds this commitment to.
func FromProverCommitment(pc *proof.ProverCommitment, numQueries int, opts frida.Options, hasher hashing.Hasher) (*Verifier, []uint64, error) {
	v, coin, err := newVerifier(pc.Roots, pc.DomainSize, pc.PolyCount, opts, hasher)
	if err != nil {
		return nil, nil, err
	}
	positions, err := coin.DrawQueryPositions(numQueries, pc.DomainSize)
	if err != nil {
		return nil, nil, err
	}
	return v, positions, nil
}

// VerifyCommitment replays the transcript over a full commitment and checks
// its embedded opening proof at the transcript's query positions. On success
// the returned verifier can check further openings of the same commitment.
func VerifyCommitment(c *proof.Commitment, opts frida.Options, hasher hashing.Hasher) (*Verifier, error) {
	v, coin, err := newVerifier(c.Roots, c.DomainSize, c.PolyCount, opts, hasher)
	if err != nil {
		return nil, err
	}
	positions, err := coin.DrawQueryPositions(c.NumQueries, c.DomainSize)
	if err != nil {
		return nil, err
	}
	evaluations, err := v.ExtractEvaluations(c.Proof, positions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frida.ErrInvalidCommitment, err)
	}
	if err := v.Verify(c.Proof, evaluations, positions); err != nil {
		return nil, fmt.Errorf("%w: %w", frida.ErrInvalidCommitment, err)
	}
	return v, nil
}

// newVerifier validates the commitment geometry and replays the transcript
// to recover the folding challenges. The returned coin has absorbed all
// roots and is positioned to draw query positions.
func newVerifier(roots [][]byte, domainSize, polyCount int, opts frida.Options, hasher hashing.Hasher) (*Verifier, *transcript.Coin, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if domainSize < frida.MinDomainSize || domainSize > frida.MaxDomainSize ||
		bits.OnesCount(uint(domainSize)) != 1 {
		return nil, nil, frida.ErrDomainTooLarge
	}
	numLayers := opts.NumFriLayers(domainSize)
	if numLayers == 0 {
		return nil, nil, frida.ErrNoFoldableLayers
	}
	if len(roots) != numLayers+1 || polyCount < 1 {
		return nil, nil, frida.ErrMalformedProof
	}

	coin := transcript.New(hasher)
	var xi []fr.Element
	alphas := make([]fr.Element, len(roots))
	maxDegreePlus1 := domainSize / opts.BlowupFactor
	for depth, root := range roots {
		coin.Reseed(root)
		if depth == 0 && polyCount > 1 {
			drawn, err := coin.DrawXi(polyCount)
			if err != nil {
				return nil, nil, err
			}
			xi = drawn
		}
		alpha, err := coin.Draw()
		if err != nil {
			return nil, nil, err
		}
		alphas[depth] = alpha

		// the remainder commitment is the last root and is not folded
		if depth != len(roots)-1 && maxDegreePlus1%opts.FoldingFactor != 0 {
			return nil, nil, &frida.DegreeTruncationError{
				DomainSize:    domainSize,
				FoldingFactor: opts.FoldingFactor,
				NumLayers:     depth,
			}
		}
		maxDegreePlus1 /= opts.FoldingFactor
	}

	return &Verifier{
		opts:       opts,
		hasher:     hasher,
		domainSize: domainSize,
		polyCount:  polyCount,
		numLayers:  numLayers,
		roots:      roots,
		alphas:     alphas,
		xi:         xi,
		log:        logger.Logger().With().Str("component", "verifier").Logger(),
	}, coin, nil
}

// DomainSize returns the evaluation domain of the verified commitment.
func (v *Verifier) DomainSize() int { return v.domainSize }

// PolyCount returns how many polynomials the commitment covers.
func (v *Verifier) PolyCount() int { return v.polyCount }

// IsBatch reports whether the commitment covers more than one polynomial.
func (v *Verifier) IsBatch() bool { return v.polyCount > 1 }

// Verify checks an opening proof: evaluations must hold polyCount claimed
// values per queried position, in position order.
func (v *Verifier) Verify(p *proof.Proof, evaluations []fr.Element, positions []uint64) error {
	if len(evaluations) != len(positions)*v.polyCount {
		return frida.ErrNumPositionEvaluationMismatch
	}
	for _, pos := range positions {
		if pos >= uint64(v.domainSize) {
			return frida.ErrPositionOutOfRange
		}
	}
	if v.IsBatch() && p.BatchLayer == nil {
		return frida.ErrMalformedProof
	}
	wantLayers := v.numLayers
	if v.IsBatch() {
		wantLayers--
	}
	if len(p.Layers) != wantLayers {
		return frida.ErrMalformedProof
	}

	ff := v.opts.FoldingFactor
	gen := field.RootOfUnity(v.domainSize)
	offset := field.CosetShift()

	// the folding coset generators are invariant across depths
	foldingRoots := make([]fr.Element, ff)
	for i := range foldingRoots {
		foldingRoots[i].Exp(gen, big.NewInt(int64(v.domainSize/ff*i)))
	}

	domainSize := v.domainSize
	domainGen := gen
	maxDegreePlus1 := v.domainSize / v.opts.BlowupFactor
	pos := append([]uint64(nil), positions...)
	evals := evaluations
	layerIdx := 0

	for depth := 0; depth < v.numLayers; depth++ {
		folded := frida.FoldPositions(pos, domainSize, ff)

		var rows [][]fr.Element
		var err error
		if depth == 0 && v.IsBatch() {
			rows, err = v.verifyBatchLayer(p.BatchLayer, folded, pos, evals)
		} else {
			rows, err = v.verifyLayer(&p.Layers[layerIdx], depth, folded, pos, evals, domainSize)
			layerIdx++
		}
		if err != nil {
			return err
		}

		// project each authenticated row onto the next layer
		alpha := v.alphas[depth]
		next := make([]fr.Element, len(folded))
		xs := make([]fr.Element, ff)
		for i, fp := range folded {
			var xe fr.Element
			xe.Exp(domainGen, new(big.Int).SetUint64(fp))
			xe.Mul(&xe, &offset)
			for j := range xs {
				xs[j].Mul(&xe, &foldingRoots[j])
			}
			val, err := polynom.InterpolateEval(xs, rows[i], &alpha)
			if err != nil {
				return err
			}
			next[i] = val
		}
		evals = next

		if maxDegreePlus1%ff != 0 {
			return &frida.DegreeTruncationError{
				DomainSize:    domainSize,
				FoldingFactor: ff,
				NumLayers:     depth,
			}
		}
		domainGen.Exp(domainGen, big.NewInt(int64(ff)))
		maxDegreePlus1 /= ff
		domainSize /= ff
		pos = folded
	}

	if err := v.verifyRemainder(p, pos, evals, domainGen, offset, maxDegreePlus1); err != nil {
		return err
	}
	v.log.Debug().Int("positions", len(positions)).Msg("opening verified")
	return nil
}

// verifyLayer authenticates one folded layer's rows against its root and
// checks that the values opened there agree with the evaluations carried
// over from the previous layer.
func (v *Verifier) verifyLayer(l *proof.Layer, depth int, folded, positions []uint64, evals []fr.Element, domainSize int) ([][]fr.Element, error) {
	rows, err := l.ParseRows(v.opts.FoldingFactor)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(folded) {
		return nil, frida.ErrMalformedProof
	}
	leafCount := domainSize / v.opts.FoldingFactor
	if err := v.checkRows(l, rows, folded, leafCount, depth); err != nil {
		return nil, err
	}

	// every carried-over evaluation must reappear inside its opened row
	rowLength := uint64(leafCount)
	for i, position := range positions {
		idx := indexOf(folded, position%rowLength)
		if idx < 0 {
			return nil, frida.ErrMalformedProof
		}
		if !rows[idx][position/rowLength].Equal(&evals[i]) {
			return nil, &frida.InvalidLayerFoldingError{Layer: depth}
		}
	}
	return rows, nil
}

// verifyBatchLayer authenticates the interleaved first layer, checks the
// claimed per-polynomial evaluations and collapses each bucket into the
// xi-combined row the folding continues from.
func (v *Verifier) verifyBatchLayer(l *proof.Layer, folded, positions []uint64, evals []fr.Element) ([][]fr.Element, error) {
	bucketSize := v.polyCount * v.opts.FoldingFactor
	rows, err := l.ParseRows(bucketSize)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(folded) {
		return nil, frida.ErrMalformedProof
	}
	leafCount := v.domainSize / v.opts.FoldingFactor
	if err := v.checkRows(l, rows, folded, leafCount, 0); err != nil {
		return nil, err
	}

	rowLength := uint64(leafCount)
	for i, position := range positions {
		idx := indexOf(folded, position%rowLength)
		if idx < 0 {
			return nil, frida.ErrMalformedProof
		}
		base := int(position/rowLength) * v.polyCount
		for k := 0; k < v.polyCount; k++ {
			if !rows[idx][base+k].Equal(&evals[i*v.polyCount+k]) {
				return nil, &frida.InvalidLayerFoldingError{Layer: 0}
			}
		}
	}

	// xi-combine each bucket into a single polynomial's folding row
	combined := make([][]fr.Element, len(rows))
	for i, row := range rows {
		c := make([]fr.Element, v.opts.FoldingFactor)
		var t fr.Element
		for j := 0; j < v.opts.FoldingFactor; j++ {
			for k := 0; k < v.polyCount; k++ {
				t.Mul(&row[j*v.polyCount+k], &v.xi[k])
				c[j].Add(&c[j], &t)
			}
		}
		combined[i] = c
	}
	return combined, nil
}

// checkRows verifies the Merkle authentication of opened rows against the
// layer root at the given depth.
func (v *Verifier) checkRows(l *proof.Layer, rows [][]fr.Element, folded []uint64, leafCount, depth int) error {
	treeDepth := bits.TrailingZeros(uint(leafCount))
	batchProof, err := l.ParseProof(v.hasher.Size(), treeDepth)
	if err != nil {
		return err
	}

	// merkle verification consumes leaves in sorted position order
	type leaf struct {
		pos    uint64
		digest []byte
	}
	leaves := make([]leaf, len(folded))
	for i, fp := range folded {
		leaves[i] = leaf{pos: fp, digest: hashing.HashElements(v.hasher, rows[i])}
	}
	for i := 1; i < len(leaves); i++ {
		for j := i; j > 0 && leaves[j].pos < leaves[j-1].pos; j-- {
			leaves[j], leaves[j-1] = leaves[j-1], leaves[j]
		}
	}
	indexes := make([]uint64, len(leaves))
	digests := make([][]byte, len(leaves))
	for i, lf := range leaves {
		indexes[i] = lf.pos
		digests[i] = lf.digest
	}
	if err := merkle.VerifyBatch(v.hasher, v.roots[depth], indexes, digests, batchProof); err != nil {
		return &frida.RootMismatchError{Layer: depth}
	}
	return nil
}

// verifyRemainder checks the committed remainder polynomial against the last
// layer's evaluations.
func (v *Verifier) verifyRemainder(p *proof.Proof, positions []uint64, evals []fr.Element, domainGen, offset fr.Element, maxDegreePlus1 int) error {
	remainder, err := p.ParseRemainder()
	if err != nil {
		return err
	}
	if len(remainder) > maxDegreePlus1 {
		return &frida.RemainderDegreeMismatchError{MaxDegree: maxDegreePlus1 - 1, Got: len(remainder)}
	}
	if !bytes.Equal(hashing.HashElements(v.hasher, remainder), v.roots[len(v.roots)-1]) {
		return &frida.RootMismatchError{Layer: len(v.roots) - 1}
	}

	for i, position := range positions {
		var x fr.Element
		x.Exp(domainGen, new(big.Int).SetUint64(position))
		x.Mul(&x, &offset)
		got := polynom.Eval(remainder, &x)
		if !got.Equal(&evals[i]) {
			return &frida.InvalidRemainderFoldingError{}
		}
	}
	return nil
}

// ExtractEvaluations pulls the claimed first-layer evaluations for the given
// positions out of an opening proof, polyCount values per position. The
// values are only trustworthy once Verify accepts the same proof.
func (v *Verifier) ExtractEvaluations(p *proof.Proof, positions []uint64) ([]fr.Element, error) {
	folded := frida.FoldPositions(positions, v.domainSize, v.opts.FoldingFactor)
	rowLength := uint64(v.domainSize / v.opts.FoldingFactor)

	var rows [][]fr.Element
	var err error
	if v.IsBatch() {
		if p.BatchLayer == nil {
			return nil, frida.ErrMalformedProof
		}
		rows, err = p.BatchLayer.ParseRows(v.polyCount * v.opts.FoldingFactor)
	} else {
		if len(p.Layers) == 0 {
			return nil, frida.ErrMalformedProof
		}
		rows, err = p.Layers[0].ParseRows(v.opts.FoldingFactor)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) != len(folded) {
		return nil, frida.ErrMalformedProof
	}

	out := make([]fr.Element, 0, len(positions)*v.polyCount)
	for _, position := range positions {
		idx := indexOf(folded, position%rowLength)
		if idx < 0 {
			return nil, frida.ErrMalformedProof
		}
		if v.IsBatch() {
			base := int(position/rowLength) * v.polyCount
			out = append(out, rows[idx][base:base+v.polyCount]...)
		} else {
			out = append(out, rows[idx][position/rowLength])
		}
	}
	return out, nil
}

func indexOf(positions []uint64, p uint64) int {
	for i, v := range positions {
		if v == p {
			return i
		}
	}
	return -1
}
